package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/dbx"
	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/dmitrijs2005/charstudio/internal/server/repositories/characters"
	"github.com/dmitrijs2005/charstudio/internal/server/repositories/repomanager"
)

// -------- test fakes --------

type memCharacters struct {
	mu      sync.Mutex
	items   map[string]*models.Character
	updates int

	createErr error
	updateErr error
}

func newMemCharacters() *memCharacters {
	return &memCharacters{items: make(map[string]*models.Character)}
}

func (m *memCharacters) Create(ctx context.Context, c *models.Character) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.items[c.ID] = c.Clone()
	return nil
}

func (m *memCharacters) GetByID(ctx context.Context, ownerID, id string) (*models.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return c.Clone(), nil
}

func (m *memCharacters) GetForUpdate(ctx context.Context, id string) (*models.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c.Clone(), nil
}

func (m *memCharacters) ListByOwner(ctx context.Context, ownerID string) ([]*models.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Character, 0)
	for _, c := range m.items {
		if c.OwnerID == ownerID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *memCharacters) Update(ctx context.Context, c *models.Character) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	next := c.Clone()
	next.OwnerID = cur.OwnerID
	next.ImagePreviewURL = cur.ImagePreviewURL
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now()
	m.items[c.ID] = next
	m.updates++
	return nil
}

func (m *memCharacters) get(id string) *models.Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Clone()
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	chars *memCharacters
}

func (f *fakeRepoManager) Characters(db dbx.DBTX) characters.Repository { return f.chars }

type fakeStore struct {
	objects map[string][]byte
	getErr  error
	gets    []string

	putErr error
	put    []string
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets = append(f.gets, key)
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func (f *fakeStore) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.put = append(f.put, key+"|"+contentType)
	return "https://minio.local/put/" + key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://minio.local/get/" + key, nil
}

func (f *fakeStore) PresignTTL() time.Duration { return 15 * time.Minute }

type fakeModel struct {
	analysis    string
	analysisErr error
	panicOn     bool

	scene    []byte
	sceneErr error

	gotMime  string
	gotImage []byte
	gotScene string
}

func (f *fakeModel) AnalyzeCharacter(ctx context.Context, image []byte, mimeType string) (string, error) {
	if f.panicOn {
		panic("model exploded")
	}
	f.gotImage = image
	f.gotMime = mimeType
	return f.analysis, f.analysisErr
}

func (f *fakeModel) GenerateScene(ctx context.Context, reference []byte, mimeType, scene string) ([]byte, error) {
	f.gotImage = reference
	f.gotMime = mimeType
	f.gotScene = scene
	return f.scene, f.sceneErr
}

// manualRunner keeps submitted jobs until the test runs them.
type manualRunner struct {
	jobs []func(ctx context.Context)
}

func (r *manualRunner) Submit(name string, fn func(ctx context.Context)) {
	r.jobs = append(r.jobs, fn)
}

func (r *manualRunner) runAll(ctx context.Context) {
	jobs := r.jobs
	r.jobs = nil
	for _, fn := range jobs {
		fn(ctx)
	}
}

type recordingPublisher struct {
	mu       sync.Mutex
	statuses []models.Status
}

func (p *recordingPublisher) Publish(c *models.Character) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, c.Status)
}

// -------- helpers --------

type fixture struct {
	svc    *CharacterService
	chars  *memCharacters
	store  *fakeStore
	model  *fakeModel
	runner *manualRunner
	events *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		chars:  newMemCharacters(),
		store:  &fakeStore{objects: map[string][]byte{}},
		model:  &fakeModel{},
		runner: &manualRunner{},
		events: &recordingPublisher{},
	}
	f.svc = NewCharacterService(nil, &fakeRepoManager{chars: f.chars}, f.store, f.model, f.runner, f.events,
		logging.Nop{}, Options{})
	f.svc.withTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return fn(ctx, nil)
	}
	return f
}

var errBoom = errors.New("boom")
