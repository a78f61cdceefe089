// Package characters persists Character records.
package characters

import (
	"context"

	"github.com/dmitrijs2005/charstudio/internal/server/models"
)

// Repository is the storage contract for characters. Reads that serve a
// caller are always scoped to the owner; GetForUpdate is for the lifecycle
// job, which already knows the record it created.
type Repository interface {
	Create(ctx context.Context, c *models.Character) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Character, error)
	GetForUpdate(ctx context.Context, id string) (*models.Character, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Character, error)
	Update(ctx context.Context, c *models.Character) error
}
