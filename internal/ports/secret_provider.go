package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bnema/bws-ssh-agent/internal/domain"
)

// SecretProvider fetches secret material from the remote store. The core
// depends on the store only through this capability; the real adapter
// lives in internal/adapters/secrets/bws.
type SecretProvider interface {
	Fetch(ctx context.Context, id uuid.UUID) (domain.Secret, error)
}
