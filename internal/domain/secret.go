package domain

import "github.com/google/uuid"

// Secret is the raw material returned by the secret store for one
// configured reference. Value is expected to be an OpenSSH-encoded
// private key.
type Secret struct {
	// Name is the store-side display name for the secret. It becomes the
	// identity comment shown by `ssh-add -l`.
	Name  string
	Value string
}

// SecretReference points at one credential in the secret store. The
// ordered list of references is read once at startup and never changes
// for the lifetime of the daemon.
type SecretReference struct {
	ID       uuid.UUID
	Position int
}

// NewSecretReferences parses the configured secret id strings, preserving
// their order. Position is the index in the configured list.
func NewSecretReferences(ids []string) ([]SecretReference, error) {
	refs := make([]SecretReference, 0, len(ids))
	for i, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &InvalidSecretIDError{Raw: raw, Position: i, Err: err}
		}
		refs = append(refs, SecretReference{ID: id, Position: i})
	}
	return refs, nil
}
