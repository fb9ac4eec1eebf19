package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/google/uuid"
)

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
	existsErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*models.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

// mockCommunityRepository is an in-memory implementation of CommunityRepository
// that applies status updates conditionally, like the SQL repository does
type mockCommunityRepository struct {
	mu          sync.Mutex
	communities map[string]*models.Community
	seq         int
	createErr   error
	listErr     error
}

func newMockCommunityRepository() *mockCommunityRepository {
	return &mockCommunityRepository{communities: make(map[string]*models.Community)}
}

func (m *mockCommunityRepository) Create(ctx context.Context, community *models.Community) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	community.ID = uuid.New().String()
	community.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	community.UpdatedAt = community.CreatedAt
	stored := *community
	m.communities[community.ID] = &stored
	return nil
}

func (m *mockCommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	community, ok := m.communities[id]
	if !ok {
		return nil, models.ErrCommunityNotFound
	}
	found := *community
	return &found, nil
}

func (m *mockCommunityRepository) list(match func(*models.Community) bool) ([]models.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]models.Community, 0)
	for _, c := range m.communities {
		if match(c) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCommunityRepository) GetAll(ctx context.Context) ([]models.Community, error) {
	return m.list(func(*models.Community) bool { return true })
}

func (m *mockCommunityRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Community, error) {
	return m.list(func(c *models.Community) bool { return c.OwnerID == ownerID })
}

func (m *mockCommunityRepository) UpdateStatus(ctx context.Context, id string, status models.CommunityStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	community, ok := m.communities[id]
	if !ok {
		return models.ErrCommunityNotFound
	}
	if !models.CanTransition(community.Status, status) {
		return models.ErrStatusNotPending
	}
	community.Status = status
	community.UpdatedAt = community.UpdatedAt.Add(time.Second)
	return nil
}

// mockDocumentStorage is an in-memory implementation of DocumentStorage
type mockDocumentStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	created   int
	createErr error
}

func newMockDocumentStorage() *mockDocumentStorage {
	return &mockDocumentStorage{blobs: make(map[string][]byte)}
}

type blobWriter struct {
	bytes.Buffer
	close func([]byte)
}

func (w *blobWriter) Close() error {
	w.close(w.Bytes())
	return nil
}

func (m *mockDocumentStorage) Create(name string, category models.DocumentCategory) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	key := string(category) + "/" + name
	m.blobs[key] = nil
	return &blobWriter{close: func(b []byte) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.blobs[key]; ok {
			m.blobs[key] = append([]byte(nil), b...)
		}
	}}, nil
}

func (m *mockDocumentStorage) Open(name string, category models.DocumentCategory) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.blobs[string(category)+"/"+name]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *mockDocumentStorage) Delete(name string, category models.DocumentCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, string(category)+"/"+name)
	return nil
}

func (m *mockDocumentStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// mockNotifier records decided applications
type mockNotifier struct {
	mu      sync.Mutex
	decided []string
	err     error
}

func (m *mockNotifier) ApplicationDecided(ctx context.Context, community *models.Community) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decided = append(m.decided, community.ID)
	return m.err
}

// mockNewsRepository is an in-memory implementation of NewsRepository
type mockNewsRepository struct {
	articles []models.News
	err      error
}

func (m *mockNewsRepository) GetAll(ctx context.Context) ([]models.News, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

func (m *mockNewsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	for _, a := range m.articles {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, models.ErrNewsNotFound
}

func (m *mockNewsRepository) Create(ctx context.Context, article *models.News) error {
	if m.err != nil {
		return m.err
	}
	article.ID = uuid.New().String()
	m.articles = append(m.articles, *article)
	return nil
}

// mockCarouselRepository is an in-memory implementation of CarouselRepository
type mockCarouselRepository struct {
	slides []models.CarouselSlide
	err    error
}

func (m *mockCarouselRepository) GetActive(ctx context.Context) ([]models.CarouselSlide, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.slides, nil
}

func (m *mockCarouselRepository) Create(ctx context.Context, slide *models.CarouselSlide) error {
	if m.err != nil {
		return m.err
	}
	slide.ID = uuid.New().String()
	m.slides = append(m.slides, *slide)
	return nil
}
