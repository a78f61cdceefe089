// Package services holds the character lifecycle: creation, background
// analysis, visualization and the storage helpers around them.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/dbx"
	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/dmitrijs2005/charstudio/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/charstudio/internal/server/services")

// ObjectStore is the slice of object storage the service needs.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	PresignTTL() time.Duration
}

// Model is the generative backend.
type Model interface {
	AnalyzeCharacter(ctx context.Context, image []byte, mimeType string) (string, error)
	GenerateScene(ctx context.Context, reference []byte, mimeType, scene string) ([]byte, error)
}

// TaskRunner starts background jobs that outlive the request.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context))
}

// Publisher is notified after every committed change of a character.
type Publisher interface {
	Publish(c *models.Character)
}

// Options tunes the simulated training job.
type Options struct {
	// TrainingDelay is how long a character stays in training before the
	// analysis runs.
	TrainingDelay time.Duration
}

// CharacterService implements the character lifecycle on top of the
// repositories, the object store and the model.
type CharacterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	model       Model
	tasks       TaskRunner
	events      Publisher
	logger      logging.Logger
	opts        Options

	newID  func() string
	withTx func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

// NewCharacterService wires a CharacterService. events may be nil.
func NewCharacterService(db *sql.DB, rm repomanager.RepositoryManager, store ObjectStore, model Model,
	tasks TaskRunner, events Publisher, logger logging.Logger, opts Options) *CharacterService {
	s := &CharacterService{
		db:          db,
		repomanager: rm,
		store:       store,
		model:       model,
		tasks:       tasks,
		events:      events,
		logger:      logger.With("module", "characters"),
		opts:        opts,
		newID:       func() string { return uuid.NewString() },
	}
	s.withTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, s.db, nil, fn)
	}
	return s
}

// CreateCharacter stores a pending character for ownerID whose preview is
// imagePaths[0], schedules its analysis and returns the new id without
// waiting for the analysis.
func (s *CharacterService) CreateCharacter(ctx context.Context, ownerID string, imagePaths []string) (string, error) {
	if ownerID == "" {
		return "", common.ErrUnauthenticated
	}
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("%w: no files were provided", common.ErrInvalidArgument)
	}
	for i, p := range imagePaths {
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("%w: file %d has an empty path", common.ErrInvalidArgument, i)
		}
	}

	c := models.NewCharacter(s.newID(), ownerID, imagePaths[0])
	if err := s.repomanager.Characters(s.db).Create(ctx, c); err != nil {
		return "", fmt.Errorf("create character: %w", err)
	}

	s.logger.Info(ctx, "character created", "character_id", c.ID, "owner_id", ownerID, "images", len(imagePaths))
	s.publish(c)

	paths := append([]string(nil), imagePaths...)
	id := c.ID
	s.tasks.Submit("analyze:"+id, func(jobCtx context.Context) {
		s.runAnalysis(jobCtx, id, paths)
	})

	return id, nil
}

// ListCharacters returns all characters of ownerID in no particular order.
func (s *CharacterService) ListCharacters(ctx context.Context, ownerID string) ([]*models.Character, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	list, err := s.repomanager.Characters(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return list, nil
}

// GetCharacter returns one character of ownerID, or common.ErrorNotFound
// when it does not exist or belongs to someone else.
func (s *CharacterService) GetCharacter(ctx context.Context, ownerID, characterID string) (*models.Character, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(characterID) == "" {
		return nil, fmt.Errorf("%w: characterId is required", common.ErrInvalidArgument)
	}
	return s.repomanager.Characters(s.db).GetByID(ctx, ownerID, characterID)
}

// transition locks the record, checks the state machine, lets mutate adjust
// the other fields and writes it back, all in one transaction. The committed
// record is published afterwards.
func (s *CharacterService) transition(ctx context.Context, characterID string, next models.Status, mutate func(c *models.Character)) (*models.Character, error) {
	var updated *models.Character

	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Characters(tx)

		c, err := repo.GetForUpdate(ctx, characterID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, c.Status, next)
		}

		c.Status = next
		if mutate != nil {
			mutate(c)
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(updated)
	return updated, nil
}

func (s *CharacterService) publish(c *models.Character) {
	if s.events != nil {
		s.events.Publish(c)
	}
}
