package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AdapterIDPrefix starts every simulated adapter id.
const AdapterIDPrefix = "simulated-adapter-"

// analysisResult is the model's JSON answer. Nil fields were absent.
type analysisResult struct {
	CharacterName *string   `json:"characterName"`
	Description   *string   `json:"description"`
	Keywords      *[]string `json:"keywords"`
}

func fallbackAnalysis() analysisResult {
	name := "Code Hero"
	desc := "A mysterious character of unclear origin."
	keywords := []string{"mysterious"}
	return analysisResult{CharacterName: &name, Description: &desc, Keywords: &keywords}
}

// parseAnalysis decodes the model output. ok is false when the text is empty
// or not a JSON object, in which case the fallback is returned.
func parseAnalysis(text string) (res analysisResult, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackAnalysis(), false
	}
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return fallbackAnalysis(), false
	}
	return res, true
}

func (r analysisResult) applyTo(c *models.Character) {
	if r.CharacterName != nil {
		c.CharacterName = *r.CharacterName
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Keywords != nil {
		c.Keywords = append(make([]string, 0, len(*r.Keywords)), (*r.Keywords)...)
	}
}

// runAnalysis is the background job started by CreateCharacter. It runs once
// and never retries. Any failure, panics included, moves the character to
// error and leaves every other field untouched.
func (s *CharacterService) runAnalysis(ctx context.Context, characterID string, imagePaths []string) {
	ctx, span := tracer.Start(ctx, "characters.analysis", trace.WithAttributes(attribute.String("character.id", characterID)))
	defer span.End()

	log := s.logger.With("character_id", characterID)

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			s.fail(ctx, log, characterID, err)
		}
	}()

	if err := s.analyze(ctx, log, characterID, imagePaths); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		s.fail(ctx, log, characterID, err)
	}
}

func (s *CharacterService) analyze(ctx context.Context, log logging.Logger, characterID string, imagePaths []string) error {
	if _, err := s.transition(ctx, characterID, models.StatusTraining, nil); err != nil {
		return fmt.Errorf("start training: %w", err)
	}
	log.Info(ctx, "training started")

	if err := sleepCtx(ctx, s.opts.TrainingDelay); err != nil {
		return fmt.Errorf("training interrupted: %w", err)
	}

	if len(imagePaths) == 0 {
		return fmt.Errorf("no images to analyze")
	}
	path := imagePaths[0]

	image, err := s.store.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("download %q: %w", path, err)
	}

	text, err := s.model.AnalyzeCharacter(ctx, image, common.ImageContentType(path))
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	result, ok := parseAnalysis(text)
	if !ok {
		log.Warn(ctx, "model output was not usable, using fallback analysis", "output", truncate(text, 200))
	}

	adapterID := AdapterIDPrefix + uuid.NewString()
	c, err := s.transition(ctx, characterID, models.StatusReady, func(c *models.Character) {
		result.applyTo(c)
		c.AdapterID = &adapterID
	})
	if err != nil {
		return fmt.Errorf("finish training: %w", err)
	}

	log.Info(ctx, "character ready", "character_name", c.CharacterName, "adapter_id", adapterID)
	return nil
}

// fail records the error status. The write uses a fresh context so that a
// cancelled job context still gets its failure persisted.
func (s *CharacterService) fail(ctx context.Context, log logging.Logger, characterID string, cause error) {
	log.Error(ctx, "character analysis failed", "error", cause)

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := s.transition(wctx, characterID, models.StatusError, nil); err != nil {
		log.Error(ctx, "failed to mark character as error", "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
