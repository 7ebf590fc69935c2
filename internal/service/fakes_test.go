package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/repository"
)

// fakeStorage is an in-memory object store with per-prefix failure
// injection.
type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	deleted     []string
	failSave    string // Save fails for paths with this prefix
	failDel     bool
	failPresign bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(path string, file io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSave != "" && strings.HasPrefix(path, s.failSave) {
		return fmt.Errorf("storage unavailable")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *fakeStorage) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDel {
		return fmt.Errorf("delete unavailable")
	}
	delete(s.objects, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) URL(path string) string {
	return "https://storage.test/apps/" + path
}

func (s *fakeStorage) PresignedURL(path string) (string, error) {
	if s.failPresign {
		return "", fmt.Errorf("presign unavailable")
	}
	return "https://storage.test/presigned/" + path, nil
}

func (s *fakeStorage) PresignedPutURL(path string, expiry time.Duration) (string, error) {
	return "https://storage.test/signed/" + path, nil
}

func (s *fakeStorage) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// fakeAppRepo is an in-memory metadata store. Records are stored and
// returned by value so callers never alias its state.
type fakeAppRepo struct {
	mu         sync.Mutex
	apps       map[string]model.App
	failCreate error
	failUpdate error
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[string]model.App)}
}

func (r *fakeAppRepo) Create(app *model.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return r.failCreate
	}
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeAppRepo) ByID(id string) (*model.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, repository.ErrAppNotFound
	}
	clone := app
	return &clone, nil
}

func (r *fakeAppRepo) Update(app *model.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.apps[app.ID]; !ok {
		return repository.ErrAppNotFound
	}
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeAppRepo) UpdateStatus(id, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return repository.ErrAppNotFound
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	r.apps[id] = app
	return nil
}

func (r *fakeAppRepo) SetFlag(id string, flagged bool, by *string, at *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return repository.ErrAppNotFound
	}
	app.IsFlagged = flagged
	app.FlaggedBy = by
	app.FlaggedAt = at
	r.apps[id] = app
	return nil
}

func (r *fakeAppRepo) SetFeatured(id string, featured bool, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return repository.ErrAppNotFound
	}
	app.Featured = featured
	app.UpdatedAt = updatedAt
	r.apps[id] = app
	return nil
}

func (r *fakeAppRepo) IncrementDownloads(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return repository.ErrAppNotFound
	}
	app.DownloadCount++
	r.apps[id] = app
	return nil
}

func (r *fakeAppRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[id]; !ok {
		return repository.ErrAppNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeAppRepo) Approved(category, search string) ([]*model.App, error) {
	return r.filtered(func(a model.App) bool {
		if a.Status != model.StatusApproved {
			return false
		}
		if category != "" && a.Category != category {
			return false
		}
		if search != "" && !strings.Contains(a.Name, search) {
			return false
		}
		return true
	}, false), nil
}

func (r *fakeAppRepo) Featured() ([]*model.App, error) {
	return r.filtered(func(a model.App) bool {
		return a.Status == model.StatusApproved && a.Featured
	}, false), nil
}

func (r *fakeAppRepo) ByStatus(status string, oldestFirst bool) ([]*model.App, error) {
	return r.filtered(func(a model.App) bool {
		return a.Status == status
	}, oldestFirst), nil
}

func (r *fakeAppRepo) ByDeveloper(developerID string) ([]*model.App, error) {
	return r.filtered(func(a model.App) bool {
		return a.DeveloperID == developerID
	}, false), nil
}

func (r *fakeAppRepo) All() ([]*model.App, error) {
	apps := r.filtered(func(a model.App) bool { return true }, false)
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].IsFlagged && !apps[j].IsFlagged
	})
	return apps, nil
}

func (r *fakeAppRepo) filtered(keep func(model.App) bool, oldestFirst bool) []*model.App {
	r.mu.Lock()
	defer r.mu.Unlock()

	var apps []*model.App
	for _, app := range r.apps {
		if keep(app) {
			clone := app
			apps = append(apps, &clone)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		if oldestFirst {
			return apps[i].CreatedAt.Before(apps[j].CreatedAt)
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps
}

// fakeUserRepo is an in-memory profile store.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := user
	return &clone, nil
}

func (r *fakeUserRepo) All() ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []*model.User
	for _, user := range r.users {
		clone := user
		users = append(users, &clone)
	}
	return users, nil
}

func (r *fakeUserRepo) UpdateRole(id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	r.users[id] = user
	return nil
}
