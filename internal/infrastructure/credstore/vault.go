// Package credstore is the persisted credential record: the bearer credential,
// the serialized identity and the advisory isAuthenticated flag, laid out over
// any ports.KeyValueStore.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

// Vault implements ports.CredentialVault.
type Vault struct {
	kv ports.KeyValueStore
}

func NewVault(kv ports.KeyValueStore) *Vault {
	return &Vault{kv: kv}
}

// Credential returns the stored bearer credential, or "" when absent.
func (v *Vault) Credential(ctx context.Context) (string, error) {
	tok, _, err := v.kv.Get(ctx, domain.KeyCredential)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return tok, nil
}

// Identity returns the stored identity, or nil when absent.
func (v *Vault) Identity(ctx context.Context) (*domain.Identity, error) {
	raw, ok, err := v.kv.Get(ctx, domain.KeyIdentity)
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}
	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &id, nil
}

// Save writes the full record. An empty credential clears it instead.
func (v *Vault) Save(ctx context.Context, credential string, identity *domain.Identity) error {
	if credential == "" {
		return v.Clear(ctx)
	}
	if err := v.kv.Set(ctx, domain.KeyCredential, credential); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	if err := v.SaveIdentity(ctx, identity); err != nil {
		return err
	}
	if err := v.kv.Set(ctx, domain.KeyIsAuthenticated, "true"); err != nil {
		return fmt.Errorf("write auth flag: %w", err)
	}
	return nil
}

// SaveIdentity replaces the stored identity; nil removes it.
func (v *Vault) SaveIdentity(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		if err := v.kv.Delete(ctx, domain.KeyIdentity); err != nil {
			return fmt.Errorf("delete identity: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := v.kv.Set(ctx, domain.KeyIdentity, string(raw)); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// Clear removes every key of the record.
func (v *Vault) Clear(ctx context.Context) error {
	if err := v.kv.Delete(ctx, domain.KeyCredential, domain.KeyIdentity, domain.KeyIsAuthenticated); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
