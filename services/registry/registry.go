package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	clientRepo "playvisit/database/repository/client"
	visitRepo "playvisit/database/repository/visit"
	"playvisit/models"
	"playvisit/services/capacity"
	"playvisit/services/session"
	"playvisit/utils"
)

// maxAllocAttempts bounds the retry-on-collision loop for credential
// allocation. The 4-digit id space is small; collisions are expected and
// retried transparently, never surfaced.
const maxAllocAttempts = 25

// DefaultRegistryService implements RegistryService.
type DefaultRegistryService struct {
	Repo         clientRepo.ClientRepository
	Visits       visitRepo.VisitRepository
	Sessions     session.Store
	ValidityDays int
	Now          func() time.Time
}

func (s *DefaultRegistryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Lookup fetches a client by id.
func (s *DefaultRegistryService) Lookup(ctx context.Context, clientID string) (*models.Client, error) {
	c, err := s.Repo.GetByID(ctx, clientID)
	if err != nil {
		utils.GetLogger().Error("Lookup: failed to fetch client", zap.String("clientID", clientID), zap.Error(err))
		return nil, fmt.Errorf("lookup failed, please try again")
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	return c, nil
}

// ValidateCredentials fetches a client matching id and secret.
func (s *DefaultRegistryService) ValidateCredentials(ctx context.Context, clientID, secret string) (*models.Client, error) {
	c, err := s.Repo.GetByCredentials(ctx, clientID, secret)
	if err != nil {
		utils.GetLogger().Error("ValidateCredentials: failed to fetch client", zap.String("clientID", clientID), zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if c == nil {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// Create enrolls a new client with freshly allocated credentials.
func (s *DefaultRegistryService) Create(ctx context.Context, fullName, phone string, children, packageType int) (*models.Client, error) {
	if !capacity.Known(packageType) {
		return nil, fmt.Errorf("unsupported package type %d", packageType)
	}

	start := s.now()
	expire := start.AddDate(0, 0, s.ValidityDays)

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		client := &models.Client{
			ID:              randomDigits(4),
			Secret:          randomDigits(6),
			FullName:        fullName,
			Phone:           phone,
			Children:        children,
			PackageType:     packageType,
			VisitsRemaining: packageType,
			StartDate:       start,
			ExpireDate:      expire,
		}

		err := s.Repo.Create(ctx, client)
		if err == nil {
			utils.GetLogger().Info("client enrolled",
				zap.String("clientID", client.ID),
				zap.Int("packageType", packageType),
				zap.Time("expires", expire))
			return client, nil
		}
		if errors.Is(err, clientRepo.ErrDuplicateKey) {
			continue
		}
		utils.GetLogger().Error("Create: failed to insert client", zap.Error(err))
		return nil, fmt.Errorf("enrollment failed, please try again")
	}
	return nil, fmt.Errorf("could not allocate unique client credentials")
}

// Deactivate removes the client and its session. Visit log rows stay so
// that already-consumed capacity for the day is not silently released.
func (s *DefaultRegistryService) Deactivate(ctx context.Context, clientID string) error {
	deleted, err := s.Repo.Delete(ctx, clientID)
	if err != nil {
		utils.GetLogger().Error("Deactivate: failed to delete client", zap.String("clientID", clientID), zap.Error(err))
		return fmt.Errorf("deactivation failed, please try again")
	}
	if !deleted {
		return ErrClientNotFound
	}
	if err := s.Sessions.DeleteByClient(ctx, clientID); err != nil {
		// The client is gone; a stale session only lingers until its TTL.
		utils.GetLogger().Warn("Deactivate: failed to drop session", zap.String("clientID", clientID), zap.Error(err))
	}
	return nil
}

// PurgeVisits removes a client's visit log rows.
func (s *DefaultRegistryService) PurgeVisits(ctx context.Context, clientID string) (int64, error) {
	return s.Visits.DeleteByClient(ctx, clientID)
}

// List returns the full roster.
func (s *DefaultRegistryService) List(ctx context.Context) ([]models.Client, error) {
	return s.Repo.GetAll(ctx)
}

// randomDigits returns a zero-padded numeric string of the given width.
func randomDigits(width int) string {
	max := big.NewInt(1)
	for i := 0; i < width; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand failure means the process has no usable entropy source.
		panic(fmt.Sprintf("registry: random source unavailable: %v", err))
	}
	return fmt.Sprintf("%0*d", width, n)
}
