// Package translate holds the Translation Adapter implementations.
package translate

import (
	"context"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
)

// Identity returns text unchanged. It is the development backend used when
// no translation provider is configured.
type Identity struct{}

var _ core.Translator = Identity{}

func (Identity) Translate(ctx context.Context, text string, _, _ domain.Language) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}
