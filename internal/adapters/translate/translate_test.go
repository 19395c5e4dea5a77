package translate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/AntDavi/translation-server/internal/config"
	"github.com/AntDavi/translation-server/internal/domain"
)

type translatorFunc func(ctx context.Context, text string, from, to domain.Language) (string, error)

func (f translatorFunc) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	return f(ctx, text, from, to)
}

func TestIdentity(t *testing.T) {
	out, err := Identity{}.Translate(context.Background(), "Olá", "pt", "en")
	if err != nil || out != "Olá" {
		t.Errorf("expected passthrough, got %q, %v", out, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Identity{}).Translate(ctx, "Olá", "pt", "en"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGuard_Timeout(t *testing.T) {
	slow := translatorFunc(func(ctx context.Context, text string, _, _ domain.Language) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	g := NewGuard(slow, 20*time.Millisecond, 4)

	start := time.Now()
	_, err := g.Translate(context.Background(), "x", "pt", "en")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not enforced")
	}
}

func TestGuard_LimitsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	next := translatorFunc(func(ctx context.Context, text string, _, _ domain.Language) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return text, nil
	})
	g := NewGuard(next, time.Second, 2)

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if _, err := g.Translate(context.Background(), "x", "pt", "en"); err != nil {
				t.Errorf("Translate failed: %v", err)
			}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", p)
	}
}

func TestGemini_Translate(t *testing.T) {
	var gotModel, gotPrompt, gotText string
	gen := func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotPrompt = cfg.SystemInstruction.Parts[0].Text
		gotText = contents[0].Parts[0].Text
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromText(" Hello, how are you? \n", genai.RoleModel),
			}},
		}, nil
	}
	g := NewGeminiWith(gen, "")

	out, err := g.Translate(context.Background(), "Olá, como vocês estão?", "pt-BR", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "Hello, how are you?" {
		t.Errorf("unexpected output %q", out)
	}
	if gotModel != defaultGeminiModel {
		t.Errorf("expected default model, got %q", gotModel)
	}
	if gotText != "Olá, como vocês estão?" {
		t.Errorf("unexpected user content %q", gotText)
	}
	if !strings.Contains(gotPrompt, "Brazilian Portuguese") || !strings.Contains(gotPrompt, "English") {
		t.Errorf("prompt lacks language names: %q", gotPrompt)
	}
}

func TestGemini_EmptyAndError(t *testing.T) {
	empty := NewGeminiWith(func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}, "m")
	if _, err := empty.Translate(context.Background(), "x", "pt", "en"); !errors.Is(err, ErrEmptyTranslation) {
		t.Errorf("expected ErrEmptyTranslation, got %v", err)
	}

	boom := errors.New("503")
	failing := NewGeminiWith(func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, boom
	}, "m")
	if _, err := failing.Translate(context.Background(), "x", "pt", "en"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	tr, err := FromConfig(context.Background(), config.TranslatorConfig{
		Provider: config.ProviderIdentity, Timeout: time.Second, MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if _, ok := tr.(*Guard); !ok {
		t.Errorf("expected the backend to be guarded, got %T", tr)
	}
	if out, err := tr.Translate(context.Background(), "hi", "en", "pt"); err != nil || out != "hi" {
		t.Errorf("expected identity passthrough, got %q, %v", out, err)
	}

	if _, err := FromConfig(context.Background(), config.TranslatorConfig{Provider: "deepl"}); err == nil {
		t.Error("expected unknown provider to fail")
	}
}
