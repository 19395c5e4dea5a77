package core

import (
	"context"

	"github.com/AntDavi/translation-server/internal/domain"
)

//go:generate mockgen -destination=mocks/translator_mock.go -package=mocks . Translator

// Translator is the machine translation backend. Implementations enforce
// their own timeouts; any error is treated as a TranslationFailure.
type Translator interface {
	Translate(ctx context.Context, text string, from, to domain.Language) (string, error)
}
