package application

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/bnema/bws-ssh-agent/internal/domain"
	"github.com/bnema/bws-ssh-agent/internal/ports"
)

// CachedKey is a parsed private key plus its store-side display name.
// Entries are write-once: populated on first resolution, shared by
// reference across every connection for the rest of the process.
type CachedKey struct {
	Signer  ssh.Signer
	Comment string
}

// Keyring lazily resolves the configured secret references into signers.
// One fixed slot exists per reference; the slot array never grows. A
// single mutex guards the arena, which is fine for the handful of keys a
// user configures.
type Keyring struct {
	provider ports.SecretProvider
	refs     []domain.SecretReference

	mu    sync.Mutex
	slots []*CachedKey
}

func NewKeyring(provider ports.SecretProvider, refs []domain.SecretReference) *Keyring {
	return &Keyring{
		provider: provider,
		refs:     refs,
		slots:    make([]*CachedKey, len(refs)),
	}
}

// Len returns the number of configured secret references.
func (k *Keyring) Len() int { return len(k.refs) }

// Resolve returns the cached key for the given slot, fetching and
// parsing it on first access. Two connections racing on an uncached slot
// may both fetch; the first write wins and both see equivalent values,
// so the duplicate fetch is harmless.
func (k *Keyring) Resolve(ctx context.Context, index int) (*CachedKey, error) {
	if index < 0 || index >= len(k.refs) {
		return nil, fmt.Errorf("slot %d of %d: %w", index, len(k.refs), domain.ErrInvalidIndex)
	}

	k.mu.Lock()
	if cached := k.slots[index]; cached != nil {
		k.mu.Unlock()
		return cached, nil
	}
	k.mu.Unlock()

	ref := k.refs[index]
	secret, err := k.provider.Fetch(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch secret %s: %w", ref.ID, err)
	}

	signer, err := ssh.ParsePrivateKey([]byte(secret.Value))
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w: %v", ref.ID, domain.ErrKeyFormat, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if cached := k.slots[index]; cached != nil {
		// A racing resolver populated the slot first.
		return cached, nil
	}
	entry := &CachedKey{Signer: signer, Comment: secret.Name}
	k.slots[index] = entry
	return entry, nil
}
