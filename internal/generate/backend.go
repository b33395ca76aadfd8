package generate

import (
	"context"
	"fmt"

	"github.com/dgallion1/papersum/internal/config"
)

// Backend is the configured generator together with what the API reports
// about it.
type Backend struct {
	Generator Generator
	Model     string
	Stats     *LLMStats
	close     func()
}

// NewBackend builds the generator named by cfg.GeneratorBackend, rate limited
// to cfg.RequestsPerSecond.
func NewBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	b := &Backend{close: func() {}}
	switch cfg.GeneratorBackend {
	case config.BackendOpenChat, "":
		oc := NewOpenChat(cfg.GeneratorURL, ModelInfo{
			ID:         cfg.GeneratorModelID,
			Name:       cfg.GeneratorModelName,
			MaxLength:  cfg.GeneratorMaxLength,
			TokenLimit: cfg.GeneratorTokenLimit,
		}, cfg.GeneratorTimeout)
		b.Generator, b.Model, b.Stats, b.close = oc, oc.Model(), oc.Stats, oc.Close
	case config.BackendGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		b.Generator, b.Model, b.Stats = g, g.Model(), g.Stats
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.GeneratorBackend)
	}
	b.Generator = NewLimited(b.Generator, cfg.RequestsPerSecond, 1)
	return b, nil
}

// Close releases backend resources.
func (b *Backend) Close() {
	b.close()
}
