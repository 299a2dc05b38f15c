package registry

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	clientRepo "playvisit/database/repository/client"
	"playvisit/models"
	"playvisit/services/session"
)

// fakeClientRepo stores clients by id and can be scripted to reject the
// first N inserts with a duplicate-key error.
type fakeClientRepo struct {
	clients        map[string]*models.Client
	failDuplicates int
	createCalls    int
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*models.Client)}
}

func (f *fakeClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClientRepo) GetByCredentials(ctx context.Context, id, secret string) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.Secret != secret {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClientRepo) GetAll(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeClientRepo) Create(ctx context.Context, client *models.Client) error {
	f.createCalls++
	if f.failDuplicates > 0 {
		f.failDuplicates--
		return clientRepo.ErrDuplicateKey
	}
	if _, exists := f.clients[client.ID]; exists {
		return clientRepo.ErrDuplicateKey
	}
	cp := *client
	f.clients[client.ID] = &cp
	return nil
}

func (f *fakeClientRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.clients[id]; !ok {
		return false, nil
	}
	delete(f.clients, id)
	return true, nil
}

type fakeVisitLog struct {
	purged map[string]int64
}

func (f *fakeVisitLog) BookVisit(ctx context.Context, entry *models.VisitLogEntry, expectedRemaining, ceiling int) error {
	return nil
}
func (f *fakeVisitLog) BookManual(ctx context.Context, entry *models.VisitLogEntry, ceiling int) error {
	return nil
}
func (f *fakeVisitLog) CountForPeriod(ctx context.Context, date, period string) (int, error) {
	return 0, nil
}
func (f *fakeVisitLog) ListByClient(ctx context.Context, clientID string) ([]models.VisitLogEntry, error) {
	return nil, nil
}
func (f *fakeVisitLog) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	return f.purged[clientID], nil
}

var enrollTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(repo *fakeClientRepo, sessions session.Store) *DefaultRegistryService {
	return &DefaultRegistryService{
		Repo:         repo,
		Visits:       &fakeVisitLog{},
		Sessions:     sessions,
		ValidityDays: 30,
		Now:          func() time.Time { return enrollTime },
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeClientRepo()
	svc := newService(repo, session.NewMemoryStore())

	client, err := svc.Create(context.Background(), "Ana Petrova", "+70000000000", 2, 10)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !regexp.MustCompile(`^\d{4}$`).MatchString(client.ID) {
		t.Errorf("client id %q is not four digits", client.ID)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(client.Secret) {
		t.Errorf("secret %q is not six digits", client.Secret)
	}
	if client.VisitsRemaining != 10 {
		t.Errorf("remaining = %d, want the package size", client.VisitsRemaining)
	}
	if !client.StartDate.Equal(enrollTime) {
		t.Errorf("start date = %v, want %v", client.StartDate, enrollTime)
	}
	if want := enrollTime.AddDate(0, 0, 30); !client.ExpireDate.Equal(want) {
		t.Errorf("expire date = %v, want %v", client.ExpireDate, want)
	}
	if _, ok := repo.clients[client.ID]; !ok {
		t.Errorf("client not persisted")
	}
}

func TestCreate_RetriesOnCollision(t *testing.T) {
	repo := newFakeClientRepo()
	repo.failDuplicates = 3
	svc := newService(repo, session.NewMemoryStore())

	client, err := svc.Create(context.Background(), "Ana Petrova", "+70000000000", 1, 8)
	if err != nil {
		t.Fatalf("Create failed after collisions: %v", err)
	}
	if repo.createCalls != 4 {
		t.Errorf("create attempts = %d, want 4", repo.createCalls)
	}
	if client == nil || client.ID == "" {
		t.Errorf("no client allocated after retries")
	}
}

func TestCreate_GivesUpEventually(t *testing.T) {
	repo := newFakeClientRepo()
	repo.failDuplicates = 1000
	svc := newService(repo, session.NewMemoryStore())

	if _, err := svc.Create(context.Background(), "Ana Petrova", "+70000000000", 1, 8); err == nil {
		t.Fatalf("Create succeeded with an exhausted id space")
	}
	if repo.createCalls != maxAllocAttempts {
		t.Errorf("create attempts = %d, want %d", repo.createCalls, maxAllocAttempts)
	}
}

func TestCreate_UnknownPackage(t *testing.T) {
	repo := newFakeClientRepo()
	svc := newService(repo, session.NewMemoryStore())

	if _, err := svc.Create(context.Background(), "Ana Petrova", "+70000000000", 1, 9); err == nil {
		t.Fatalf("Create accepted package type 9")
	}
	if repo.createCalls != 0 {
		t.Errorf("invalid package reached the repository")
	}
}

func TestValidateCredentials(t *testing.T) {
	repo := newFakeClientRepo()
	repo.clients["1234"] = &models.Client{ID: "1234", Secret: "567890"}
	svc := newService(repo, session.NewMemoryStore())
	ctx := context.Background()

	if c, err := svc.ValidateCredentials(ctx, "1234", "567890"); err != nil || c.ID != "1234" {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if _, err := svc.ValidateCredentials(ctx, "1234", "000000"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong secret: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.ValidateCredentials(ctx, "9999", "567890"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown id: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLookup_NotFound(t *testing.T) {
	svc := newService(newFakeClientRepo(), session.NewMemoryStore())
	if _, err := svc.Lookup(context.Background(), "4321"); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("got %v, want ErrClientNotFound", err)
	}
}

func TestDeactivate(t *testing.T) {
	repo := newFakeClientRepo()
	repo.clients["1234"] = &models.Client{ID: "1234", Secret: "567890"}
	sessions := session.NewMemoryStore()
	ctx := context.Background()
	if err := sessions.Set(ctx, "chat7", models.SessionKeyLoginID, "1234"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if err := sessions.BindClient(ctx, "chat7", "1234"); err != nil {
		t.Fatalf("bind session: %v", err)
	}

	svc := newService(repo, sessions)
	if err := svc.Deactivate(ctx, "1234"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, ok := repo.clients["1234"]; ok {
		t.Errorf("client survived deactivation")
	}
	if _, ok, _ := sessions.Get(ctx, "chat7", models.SessionKeyLoginID); ok {
		t.Errorf("session survived deactivation")
	}

	if err := svc.Deactivate(ctx, "1234"); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("second deactivation: got %v, want ErrClientNotFound", err)
	}
}
