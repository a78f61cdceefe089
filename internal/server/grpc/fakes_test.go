package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/dmitrijs2005/charstudio/internal/server/services"
	"github.com/dmitrijs2005/charstudio/internal/server/watch"
)

// ---- fakes ----

type fakeCharacters struct {
	mu sync.Mutex

	createID  string
	createErr error
	gotOwner  string
	gotFiles  []string

	list    []*models.Character
	listErr error

	// get returns snapshots in order; the last one repeats
	get    []*models.Character
	getErr error
	gets   int

	image   []byte
	vizErr  error
	upload  *services.UploadTicket
	down    *services.DownloadTicket
	urlErr  error
	gotPath string
}

func (f *fakeCharacters) CreateCharacter(ctx context.Context, ownerID string, imagePaths []string) (string, error) {
	f.gotOwner = ownerID
	f.gotFiles = imagePaths
	return f.createID, f.createErr
}

func (f *fakeCharacters) ListCharacters(ctx context.Context, ownerID string) ([]*models.Character, error) {
	f.gotOwner = ownerID
	return f.list, f.listErr
}

func (f *fakeCharacters) GetCharacter(ctx context.Context, ownerID, characterID string) (*models.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotOwner = ownerID
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(f.get) == 0 {
		return nil, common.ErrorNotFound
	}
	i := f.gets
	if i >= len(f.get) {
		i = len(f.get) - 1
	}
	f.gets++
	return f.get[i].Clone(), nil
}

func (f *fakeCharacters) GenerateVisualization(ctx context.Context, ownerID, characterID, prompt string) ([]byte, error) {
	f.gotOwner = ownerID
	return f.image, f.vizErr
}

func (f *fakeCharacters) CreateUploadURL(ctx context.Context, ownerID, fileName string) (*services.UploadTicket, error) {
	f.gotOwner = ownerID
	f.gotPath = fileName
	return f.upload, f.urlErr
}

func (f *fakeCharacters) ResolveDownloadURL(ctx context.Context, ownerID, key string) (*services.DownloadTicket, error) {
	f.gotOwner = ownerID
	f.gotPath = key
	return f.down, f.urlErr
}

// helper to build server
func newTestServer(cs CharacterService) (*GRPCServer, *watch.Hub) {
	hub := watch.NewHub()
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, cs, hub, "secret", 0), hub
}

func withUser(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func character(id string, st models.Status) *models.Character {
	c := models.NewCharacter(id, "u1", "users/u1/a.png")
	c.Status = st
	return c
}
