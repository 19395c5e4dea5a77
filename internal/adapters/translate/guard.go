package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
)

// Guard bounds every call to the wrapped translator by a timeout and
// caps the number of calls in flight across all rooms.
type Guard struct {
	next    core.Translator
	timeout time.Duration
	sem     *semaphore.Weighted
}

var _ core.Translator = (*Guard)(nil)

func NewGuard(next core.Translator, timeout time.Duration, maxConcurrent int64) *Guard {
	return &Guard{
		next:    next,
		timeout: timeout,
		sem:     semaphore.NewWeighted(maxConcurrent),
	}
}

func (g *Guard) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for translation slot: %w", err)
	}
	defer g.sem.Release(1)

	start := time.Now()
	out, err := g.next.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}
	log.Debug().Str("module", "translate.guard").Str("from", string(from)).Str("to", string(to)).
		Dur("took", time.Since(start)).Msg("translated")
	return out, nil
}
