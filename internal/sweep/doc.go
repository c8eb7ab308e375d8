// Package sweep finds and reclaims dependency-cache directories.
//
// Scan walks a directory tree depth-first with an explicit work-list,
// prunes hidden subtrees, and deletes every directory named like the
// configured target (node_modules by default) after measuring it with
// Measure. Measure walks a subtree with fastwalk and reports its size
// on a best-effort basis.
package sweep
