package clientRepo

import (
	"context"
	"errors"

	"playvisit/models"
)

// ErrDuplicateKey signals a unique-index collision on id or secret. The
// registry retries allocation with fresh credentials; it is never surfaced.
var ErrDuplicateKey = errors.New("duplicate client key")

// ClientRepository defines methods for client data access.
type ClientRepository interface {
	// GetByID retrieves a client by its 4-digit id. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Client, error)
	// GetByCredentials retrieves a client matching both id and secret.
	// Returns (nil, nil) when no such pair exists.
	GetByCredentials(ctx context.Context, id, secret string) (*models.Client, error)
	// GetAll retrieves all clients ordered by full name.
	GetAll(ctx context.Context) ([]models.Client, error)
	// Create inserts a new client record. Returns ErrDuplicateKey when the
	// id or secret is already taken.
	Create(ctx context.Context, client *models.Client) error
	// Delete removes a client record by its id. Returns (false, nil) when
	// there was nothing to delete.
	Delete(ctx context.Context, id string) (bool, error)
}
