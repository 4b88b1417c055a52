package application

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/bnema/bws-ssh-agent/internal/domain"
)

// Session answers SSH-agent requests for one client connection. It holds
// no state of its own beyond the shared keyring, so one instance per
// accepted connection is cheap and all instances stay consistent.
//
// A key that fails to resolve (store unreachable, bad material) is
// logged and skipped rather than failing the whole request: clients
// should still see and use every key that does work.
type Session struct {
	keyring *Keyring
	logger  *slog.Logger

	// ctx bounds the secret fetches triggered by this session. It is the
	// serving context, not a per-request one: the agent protocol has no
	// request cancellation.
	ctx context.Context
}

var _ agent.ExtendedAgent = (*Session)(nil)

func NewSession(ctx context.Context, keyring *Keyring, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{keyring: keyring, logger: logger, ctx: ctx}
}

// List returns one identity per configured reference that resolves, in
// configured order. It never fails as a whole; an agent with zero
// working keys lists zero identities.
func (s *Session) List() ([]*agent.Key, error) {
	keys := make([]*agent.Key, 0, s.keyring.Len())
	for i, n := 0, s.keyring.Len(); i < n; i++ {
		cached, err := s.keyring.Resolve(s.ctx, i)
		if err != nil {
			s.logger.Warn("skipping key", "slot", i, "error", err)
			continue
		}
		pub := cached.Signer.PublicKey()
		keys = append(keys, &agent.Key{
			Format:  pub.Type(),
			Blob:    pub.Marshal(),
			Comment: s.comment(cached, i),
		})
	}
	return keys, nil
}

func (s *Session) comment(cached *CachedKey, index int) string {
	if cached.Comment != "" {
		return cached.Comment
	}
	return fmt.Sprintf("bws-key-%d", index)
}

func (s *Session) Sign(key ssh.PublicKey, data []byte) (*ssh.Signature, error) {
	return s.SignWithFlags(key, data, 0)
}

// SignWithFlags signs data with the first configured key whose public
// key matches exactly. A signing failure on a matched key aborts the
// request: a different key is not a substitute for a failed signature.
func (s *Session) SignWithFlags(key ssh.PublicKey, data []byte, flags agent.SignatureFlags) (*ssh.Signature, error) {
	want := key.Marshal()
	for i, n := 0, s.keyring.Len(); i < n; i++ {
		cached, err := s.keyring.Resolve(s.ctx, i)
		if err != nil {
			s.logger.Warn("skipping key", "slot", i, "error", err)
			continue
		}
		if !bytes.Equal(cached.Signer.PublicKey().Marshal(), want) {
			continue
		}
		sig, err := signWith(cached.Signer, data, flags)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
		}
		return sig, nil
	}
	return nil, domain.ErrKeyNotFound
}

// signWith picks the signature algorithm the flags ask for. Flag
// handling follows the x/crypto agent keyring: only RSA keys have
// alternate algorithms (rsa-sha2-256/512).
func signWith(signer ssh.Signer, data []byte, flags agent.SignatureFlags) (*ssh.Signature, error) {
	if flags == 0 {
		return signer.Sign(rand.Reader, data)
	}
	algSigner, ok := signer.(ssh.AlgorithmSigner)
	if !ok || signer.PublicKey().Type() != ssh.KeyAlgoRSA {
		return nil, fmt.Errorf("key type %s does not support signature flags %#x", signer.PublicKey().Type(), flags)
	}
	switch flags {
	case agent.SignatureFlagRsaSha256:
		return algSigner.SignWithAlgorithm(rand.Reader, data, ssh.KeyAlgoRSASHA256)
	case agent.SignatureFlagRsaSha512:
		return algSigner.SignWithAlgorithm(rand.Reader, data, ssh.KeyAlgoRSASHA512)
	default:
		return nil, fmt.Errorf("unsupported signature flags %#x", flags)
	}
}

// Signers exposes the resolved keys as ssh.Signers, same partial-failure
// policy as List.
func (s *Session) Signers() ([]ssh.Signer, error) {
	signers := make([]ssh.Signer, 0, s.keyring.Len())
	for i, n := 0, s.keyring.Len(); i < n; i++ {
		cached, err := s.keyring.Resolve(s.ctx, i)
		if err != nil {
			s.logger.Warn("skipping key", "slot", i, "error", err)
			continue
		}
		signers = append(signers, cached.Signer)
	}
	return signers, nil
}

// Extension reports every extension as unsupported. ServeAgent turns
// this into the failure reply clients expect for extensions they probe.
func (s *Session) Extension(extensionType string, contents []byte) ([]byte, error) {
	s.logger.Debug("extension not supported", "type", extensionType)
	return nil, agent.ErrExtensionUnsupported
}

// The agent is read-only: keys come from the secret store, never from
// clients.

func (s *Session) Add(key agent.AddedKey) error { return domain.ErrAgentReadOnly }

func (s *Session) Remove(key ssh.PublicKey) error { return domain.ErrAgentReadOnly }

func (s *Session) RemoveAll() error { return domain.ErrAgentReadOnly }

func (s *Session) Lock(passphrase []byte) error { return domain.ErrAgentReadOnly }

func (s *Session) Unlock(passphrase []byte) error { return domain.ErrAgentReadOnly }
