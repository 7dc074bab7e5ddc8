package content

import (
	"context"

	"go.uber.org/zap"

	"duel/internal/models"
)

// Generator produces a vocabulary set for a (topic, language, difficulty)
// triple. Implementations may be slow and may fail; the Service degrades to
// an empty set rather than surfacing errors to the match flow.
type Generator interface {
	Generate(ctx context.Context, topic, language, difficulty string) ([]models.VocabWord, error)
}

// Cache is a lookaside store for generated vocabulary.
type Cache interface {
	Get(ctx context.Context, topic, language, difficulty string) ([]models.VocabWord, bool, error)
	Set(ctx context.Context, topic, language, difficulty string, words []models.VocabWord) error
}

// Service orchestrates cache-then-generator resolution. Either collaborator
// may be nil: a nil cache means every call hits the generator, a nil
// generator means vocabulary is always empty.
type Service struct {
	cache     Cache
	generator Generator
	logger    *zap.Logger
}

func NewService(cache Cache, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		cache:     cache,
		generator: generator,
		logger:    logger,
	}
}

// Vocabulary never fails: cache errors and generator errors both degrade to
// an empty set, which clients are required to handle.
func (s *Service) Vocabulary(ctx context.Context, topic, language, difficulty string) []models.VocabWord {
	if s.cache != nil {
		words, hit, err := s.cache.Get(ctx, topic, language, difficulty)
		if err != nil {
			s.logger.Warn("vocab cache read failed",
				zap.String("topic", topic), zap.Error(err))
		} else if hit {
			return words
		}
	}

	if s.generator == nil {
		return nil
	}

	words, err := s.generator.Generate(ctx, topic, language, difficulty)
	if err != nil {
		s.logger.Warn("vocab generation failed, continuing with empty set",
			zap.String("topic", topic),
			zap.String("language", language),
			zap.String("difficulty", difficulty),
			zap.Error(err))
		return nil
	}

	if s.cache != nil && len(words) > 0 {
		if err := s.cache.Set(ctx, topic, language, difficulty, words); err != nil {
			s.logger.Warn("vocab cache write failed",
				zap.String("topic", topic), zap.Error(err))
		}
	}
	return words
}
