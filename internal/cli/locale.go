package cli

import (
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// localePrinter returns a message printer for the user's locale.
func localePrinter() *message.Printer {
	return message.NewPrinter(userLocale())
}

func userLocale() language.Tag {
	locale := ""

	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if locale = os.Getenv(env); locale != "" {
			break
		}
	}

	if locale == "" {
		return language.English
	}

	// POSIX locales look like en_US.UTF-8 or de_DE@euro.
	for i, r := range locale {
		if r == '.' || r == '@' {
			locale = locale[:i]

			break
		}
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}

	return tag
}
