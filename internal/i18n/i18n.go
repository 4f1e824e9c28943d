// Package i18n resolves user-facing message templates by key.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	NotFound         = "notFound"
	UseID            = "useId"
	AlreadyInstalled = "alreadyInstalled"
	FoundExtension   = "foundExtension"
	Installing       = "installing"
	SuccessInstall   = "successInstall"
)

var english = map[string]string{
	NotFound:         "Extension '%s' not found.",
	UseID:            "Make sure you use the full extension id, eg: %s",
	AlreadyInstalled: "Extension '%s' is already installed.",
	FoundExtension:   "Found '%s' in the marketplace.",
	Installing:       "Installing...",
	SuccessInstall:   "Extension '%s' v%s was successfully installed!",
}

// Formatter turns a message key and its positional arguments into a
// display string.
type Formatter interface {
	Format(key string, args ...interface{}) string
}

type Localizer struct {
	printer *message.Printer
}

// New returns a Localizer for the given locale. Locales without a
// translation fall back to English.
func New(locale string) *Localizer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: invalid message %q: %v", key, err))
		}
	}

	return &Localizer{
		printer: message.NewPrinter(resolveTag(b, locale), message.Catalog(b)),
	}
}

// resolveTag picks the catalog language that best serves locale. The
// printer only looks messages up under the exact tag it was built with.
func resolveTag(cat catalog.Catalog, locale string) language.Tag {
	want, err := language.Parse(locale)
	if err != nil {
		return language.English
	}

	supported := cat.Languages()
	_, index, confidence := cat.Matcher().Match(want)
	if confidence == language.No || index < 0 || index >= len(supported) {
		return language.English
	}
	return supported[index]
}

func (l *Localizer) Format(key string, args ...interface{}) string {
	return l.printer.Sprintf(key, args...)
}
