// Package i18n translates jsonloc's own user-facing messages.
//
// Catalogs are gettext PO files embedded from locales/{lang}/LC_MESSAGES
// and read through gotext. Until Init is called every function passes
// its message id through untouched.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"

	"github.com/minios-linux/jsonloc/locale"
)

//go:embed all:locales
var locales embed.FS

const domain = "jsonloc"

var (
	po   *gotext.Locale
	lang string
)

// Init loads the catalog for lang. An empty lang is detected from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in that order. It returns the
// language actually selected.
func Init(l string) string {
	if l == "" {
		l = detectLanguage()
	}
	lang = locale.Parse(l).Under()

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	return lang
}

// Language returns the language selected by Init, or "" before Init.
func Language() string {
	return lang
}

// T translates a message.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates a format string and applies args to it.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows GNU gettext precedence. "C" and "POSIX" mean no
// translation and are skipped.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if i := strings.IndexAny(val, ".@"); i >= 0 {
			val = val[:i]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
