package domain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var ErrLanguageEmpty = errors.New("language empty")

// Language is a canonical BCP-47 tag such as "pt-BR" or "en".
type Language string

// ParseLanguage canonicalizes raw, so "pt_br" and "PT-br" both become "pt-BR".
func ParseLanguage(raw string) (Language, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrLanguageEmpty
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", raw, err)
	}
	return Language(tag.String()), nil
}

// DisplayName returns the English name of the language, falling back to the tag.
func (l Language) DisplayName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return string(l)
}
