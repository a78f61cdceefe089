package grpc

import (
	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
)

func toAPICharacter(c *models.Character) *api.Character {
	if c == nil {
		return nil
	}
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	var adapterID *string
	if c.AdapterID != nil {
		id := *c.AdapterID
		adapterID = &id
	}
	return &api.Character{
		ID:              c.ID,
		UserID:          c.OwnerID,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		AdapterID:       adapterID,
		CharacterName:   c.CharacterName,
		Description:     c.Description,
		Keywords:        append(make([]string, 0, len(keywords)), keywords...),
		ImagePreviewURL: c.ImagePreviewURL,
	}
}
