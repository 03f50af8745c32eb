package detect

import (
	"fmt"

	"go.uber.org/zap"

	apperrors "corpus-prep/errors"
)

// RecognizerConfig selects and tunes the entity recognizer.
type RecognizerConfig struct {
	Backend   string // "prose" or "rules"
	ModelDir  string // optional prose model directory
	CacheSize int    // LRU entries, 0 disables caching
}

// NewRecognizer builds the process-wide recognizer. A failure here is meant to
// stop the program: nothing downstream can detect entities without it.
func NewRecognizer(cfg RecognizerConfig, logger *zap.Logger) (EntityRecognizer, error) {
	var rec EntityRecognizer
	switch cfg.Backend {
	case "", "prose":
		p, err := NewProseRecognizer(cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		rec = p
	case "rules":
		rec = NewRuleRecognizer()
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrRecognizerUnavailable, "unknown backend %q", cfg.Backend)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCachedRecognizer(rec, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("wrap recognizer: %w", err)
		}
		rec = cached
	}

	logger.Info("Entity recognizer ready",
		zap.String("backend", cfg.Backend),
		zap.String("model_dir", cfg.ModelDir),
		zap.Int("cache_size", cfg.CacheSize))

	return rec, nil
}
