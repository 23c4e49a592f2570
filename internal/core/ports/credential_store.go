package ports

import (
	"context"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// KeyValueStore is durable string storage that survives process restarts.
// Get reports ok=false for a missing key; Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// CredentialSource is the gateway's view of persisted credentials.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
	// Clear is only used when no expiry handler is registered.
	Clear(ctx context.Context) error
}

// CredentialVault is the persisted credential record. The session service is
// its only writer.
type CredentialVault interface {
	CredentialSource
	Identity(ctx context.Context) (*domain.Identity, error)
	Save(ctx context.Context, credential string, identity *domain.Identity) error
	SaveIdentity(ctx context.Context, identity *domain.Identity) error
}
