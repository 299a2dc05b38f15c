package registry

import (
	"context"
	"errors"

	"playvisit/models"
)

var (
	// ErrClientNotFound means no client record exists for the id. The
	// caller re-prompts for identity.
	ErrClientNotFound = errors.New("client not found")
	// ErrInvalidCredentials means the id/secret pair did not match.
	ErrInvalidCredentials = errors.New("invalid client id or password")
)

// RegistryService owns client identity and package state.
type RegistryService interface {
	// Lookup fetches a client by id.
	Lookup(ctx context.Context, clientID string) (*models.Client, error)
	// ValidateCredentials fetches a client by matching id and secret.
	ValidateCredentials(ctx context.Context, clientID, secret string) (*models.Client, error)
	// Create enrolls a client: allocates unique credentials, seeds the
	// remaining-visit count from the package type and stamps the validity
	// window.
	Create(ctx context.Context, fullName, phone string, children, packageType int) (*models.Client, error)
	// Deactivate removes the client and drops its session. The visit log
	// is retained; PurgeVisits is the explicit cascade.
	Deactivate(ctx context.Context, clientID string) error
	// PurgeVisits removes a deactivated client's visit log rows.
	PurgeVisits(ctx context.Context, clientID string) (int64, error)
	// List returns the full roster for the admin view.
	List(ctx context.Context) ([]models.Client, error)
}
