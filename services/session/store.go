// Package session persists per-chat-user conversational state. Fields are
// set and cleared one key at a time; the store offers no multi-key
// atomicity, and consumers must treat a partially populated session as a
// conversation still in progress, never as an error.
package session

import (
	"context"

	"playvisit/models"
)

// Store is the per-user keyed session state.
type Store interface {
	// Get returns the value for key, with ok=false when the key is absent.
	Get(ctx context.Context, userID, key string) (string, bool, error)
	// Set writes one key. Last write per key wins.
	Set(ctx context.Context, userID, key, value string) error
	// ClearKeys removes the given keys, leaving the rest of the session.
	ClearKeys(ctx context.Context, userID string, keys ...string) error
	// Delete removes the whole session. The only full reset.
	Delete(ctx context.Context, userID string) error
	// BindClient records which chat user a client id is logged in from, so
	// package exhaustion and deactivation can drop the session.
	BindClient(ctx context.Context, userID, clientID string) error
	// DeleteByClient removes the session bound to a client id, if any.
	DeleteByClient(ctx context.Context, clientID string) error
}

// CurrentStep reads the conversation step, defaulting to awaiting-login for
// a fresh or wiped session.
func CurrentStep(ctx context.Context, s Store, userID string) (models.Step, error) {
	v, ok, err := s.Get(ctx, userID, models.SessionKeyStep)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.StepAwaitingLogin, nil
	}
	return models.Step(v), nil
}

// SetStep records the conversation step.
func SetStep(ctx context.Context, s Store, userID string, step models.Step) error {
	return s.Set(ctx, userID, models.SessionKeyStep, string(step))
}
