package services

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/validator"
)

// In-memory repository implementations for service tests. They enforce the
// same conditional-write semantics as the postgres layer: writes succeed only
// when the expected version matches the stored one.

type mockDegreeRepo struct {
	mu      sync.Mutex
	degrees map[string]*models.Degree

	// When positive, the next UpdateDocument calls bump the stored version
	// and report a conflict, simulating a concurrent writer.
	injectConflicts int

	// When positive, GetByName serves copies with an outdated version,
	// simulating a cached snapshot a concurrent writer already advanced
	// past. GetByNameUncached is never affected.
	staleReads int
}

func newMockDegreeRepo() *mockDegreeRepo {
	return &mockDegreeRepo{degrees: make(map[string]*models.Degree)}
}

func (m *mockDegreeRepo) Create(ctx context.Context, degree *models.Degree) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.degrees[degree.Name]; exists {
		return repositories.ErrDuplicateName
	}
	stored := *degree
	m.degrees[degree.Name] = &stored
	return nil
}

func (m *mockDegreeRepo) GetByName(ctx context.Context, name string) (*models.Degree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.degrees[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stored
	if m.staleReads > 0 {
		m.staleReads--
		out.Version--
	}
	return &out, nil
}

func (m *mockDegreeRepo) GetByNameUncached(ctx context.Context, name string) (*models.Degree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.degrees[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (m *mockDegreeRepo) List(ctx context.Context, filters repositories.DegreeFilters) ([]*models.Degree, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Degree
	for _, d := range m.degrees {
		copied := *d
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockDegreeRepo) UpdateDocument(ctx context.Context, degree *models.Degree, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.degrees[degree.Name]
	if !ok {
		return repositories.ErrNotFound
	}
	if m.injectConflicts > 0 {
		m.injectConflicts--
		stored.Version++
		return repositories.ErrVersionConflict
	}
	if stored.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}

	updated := *degree
	updated.Version = expectedVersion + 1
	m.degrees[degree.Name] = &updated
	degree.Version = updated.Version
	return nil
}

func (m *mockDegreeRepo) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.degrees[name]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.degrees, name)
	return nil
}

func (m *mockDegreeRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.degrees[name]
	return ok, nil
}

type mockRoadmapRepo struct {
	mu       sync.Mutex
	roadmaps map[string]*models.Roadmap

	injectConflicts int
	staleReads      int
}

func newMockRoadmapRepo() *mockRoadmapRepo {
	return &mockRoadmapRepo{roadmaps: make(map[string]*models.Roadmap)}
}

func (m *mockRoadmapRepo) Create(ctx context.Context, roadmap *models.Roadmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.roadmaps[roadmap.Name]; exists {
		return repositories.ErrDuplicateName
	}
	stored := *roadmap
	m.roadmaps[roadmap.Name] = &stored
	return nil
}

func (m *mockRoadmapRepo) GetByName(ctx context.Context, name string) (*models.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.roadmaps[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stored
	if m.staleReads > 0 {
		m.staleReads--
		out.Version--
	}
	return &out, nil
}

func (m *mockRoadmapRepo) GetByNameUncached(ctx context.Context, name string) (*models.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.roadmaps[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (m *mockRoadmapRepo) List(ctx context.Context, filters repositories.RoadmapFilters) ([]*models.Roadmap, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Roadmap
	for _, r := range m.roadmaps {
		copied := *r
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockRoadmapRepo) UpdateDocument(ctx context.Context, roadmap *models.Roadmap, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.roadmaps[roadmap.Name]
	if !ok {
		return repositories.ErrNotFound
	}
	if m.injectConflicts > 0 {
		m.injectConflicts--
		stored.Version++
		return repositories.ErrVersionConflict
	}
	if stored.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}

	updated := *roadmap
	updated.Version = expectedVersion + 1
	m.roadmaps[roadmap.Name] = &updated
	roadmap.Version = updated.Version
	return nil
}

func (m *mockRoadmapRepo) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roadmaps[name]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.roadmaps, name)
	return nil
}

func (m *mockRoadmapRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.roadmaps[name]
	return ok, nil
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile

	injectConflicts int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stored
	out.Metadata = cloneMetadata(stored.Metadata)
	return &out, nil
}

func (m *mockProfileRepo) UpdateDocument(ctx context.Context, profile *models.Profile, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.profiles[profile.UserID]
	if !ok {
		return repositories.ErrNotFound
	}
	if m.injectConflicts > 0 {
		m.injectConflicts--
		stored.Version++
		return repositories.ErrVersionConflict
	}
	if stored.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}

	updated := *profile
	updated.Metadata = cloneMetadata(profile.Metadata)
	updated.Version = expectedVersion + 1
	m.profiles[profile.UserID] = &updated
	profile.Version = updated.Version
	return nil
}

func cloneMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return false, nil
	}
	return user.Role == role, nil
}

func (m *mockUserRepo) setUser(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
}

type mockRepository struct {
	degree  *mockDegreeRepo
	roadmap *mockRoadmapRepo
	profile *mockProfileRepo
	user    *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		degree:  newMockDegreeRepo(),
		roadmap: newMockRoadmapRepo(),
		profile: newMockProfileRepo(),
		user:    newMockUserRepo(),
	}
}

func (m *mockRepository) Degree() repositories.DegreeRepository   { return m.degree }
func (m *mockRepository) Roadmap() repositories.RoadmapRepository { return m.roadmap }
func (m *mockRepository) Profile() repositories.ProfileRepository { return m.profile }
func (m *mockRepository) User() repositories.UserRepository       { return m.user }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testValidator() *validator.Validator {
	return validator.New()
}
