package characters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/dbx"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
)

const selectColumns = `id, owner_id, status, character_name, description, keywords,
	image_preview_url, adapter_id, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts c and fills in the server-assigned timestamps.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Character) error {
	keywords, err := encodeKeywords(c.Keywords)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO characters (id, owner_id, status, character_name, description, keywords, image_preview_url, adapter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		c.ID, c.OwnerID, string(c.Status), c.CharacterName, c.Description, keywords, c.ImagePreviewURL, nullString(c.AdapterID),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the owner's character or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Character, error) {
	query := `SELECT ` + selectColumns + ` FROM characters WHERE id=$1 AND owner_id=$2`
	return r.getOne(ctx, query, id, ownerID)
}

// GetForUpdate returns the character and locks its row until the
// surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Character, error) {
	query := `SELECT ` + selectColumns + ` FROM characters WHERE id=$1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// ListByOwner returns every character of ownerID in no particular order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Character, error) {
	query := `SELECT ` + selectColumns + ` FROM characters WHERE owner_id=$1`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select characters: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the mutable fields of c and refreshes c.UpdatedAt.
// owner_id, image_preview_url and created_at are never touched.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Character) error {
	keywords, err := encodeKeywords(c.Keywords)
	if err != nil {
		return err
	}

	query := `
		UPDATE characters
		SET status=$2, character_name=$3, description=$4, keywords=$5, adapter_id=$6, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		c.ID, string(c.Status), c.CharacterName, c.Description, keywords, nullString(c.AdapterID),
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Character, error) {
	c, err := scanCharacter(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (*models.Character, error) {
	var (
		c        models.Character
		status   string
		keywords []byte
		adapter  sql.NullString
	)
	err := row.Scan(&c.ID, &c.OwnerID, &status, &c.CharacterName, &c.Description, &keywords,
		&c.ImagePreviewURL, &adapter, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan character: %w", err)
	}

	c.Status = models.Status(status)
	if !c.Status.Valid() {
		return nil, fmt.Errorf("character %s has unknown status %q", c.ID, status)
	}
	c.Keywords = []string{}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
	}
	if adapter.Valid {
		c.AdapterID = &adapter.String
	}
	return &c, nil
}

func encodeKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}
	return b, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
