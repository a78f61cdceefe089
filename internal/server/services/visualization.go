package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GenerateVisualization renders the owner's character into the described
// scene and returns the image bytes. The character record is only read.
func (s *CharacterService) GenerateVisualization(ctx context.Context, ownerID, characterID, prompt string) ([]byte, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(characterID) == "" || strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: characterId and prompt are required", common.ErrInvalidArgument)
	}

	ctx, span := tracer.Start(ctx, "characters.visualization", trace.WithAttributes(attribute.String("character.id", characterID)))
	defer span.End()

	c, err := s.repomanager.Characters(s.db).GetByID(ctx, ownerID, characterID)
	if err != nil {
		return nil, err
	}
	if c.ImagePreviewURL == "" {
		return nil, fmt.Errorf("%w: character has no reference image", common.ErrFailedPrecondition)
	}

	image, err := s.store.Get(ctx, c.ImagePreviewURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download reference")
		return nil, fmt.Errorf("%w: download reference image: %v", common.ErrorInternal, err)
	}

	out, err := s.model.GenerateScene(ctx, image, common.ImageContentType(c.ImagePreviewURL), prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate scene")
		s.logger.Warn(ctx, "visualization failed", "character_id", characterID, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "visualization generated", "character_id", characterID, "bytes", len(out))
	return out, nil
}
