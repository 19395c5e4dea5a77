package coretest

import (
	"context"
	"fmt"

	"github.com/AntDavi/translation-server/internal/domain"
)

// TagTranslator "translates" by prefixing the target tag: "[en] Olá".
type TagTranslator struct{}

func (TagTranslator) Translate(_ context.Context, text string, _, to domain.Language) (string, error) {
	return fmt.Sprintf("[%s] %s", to, text), nil
}
