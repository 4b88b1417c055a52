package daemon

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/bnema/bws-ssh-agent/internal/application"
	"github.com/bnema/bws-ssh-agent/internal/domain"
	"github.com/bnema/bws-ssh-agent/internal/ports/mocks"
)

func serverTestKeyring(t *testing.T) (*application.Keyring, ssh.Signer) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	refs := []domain.SecretReference{{ID: uuid.New(), Position: 0}}
	provider := mocks.NewMockSecretProvider(t)
	provider.EXPECT().
		Fetch(mock.MatchedBy(func(context.Context) bool { return true }), refs[0].ID).
		Return(domain.Secret{Name: "server-key", Value: string(pem.EncodeToMemory(block))}, nil)

	return application.NewKeyring(provider, refs), signer
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("socket %s never appeared", path)
}

func TestServerServesAgentClientsUntilCanceled(t *testing.T) {
	t.Parallel()

	paths := testPaths(t)
	keyring, signer := serverTestKeyring(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(paths, keyring, logger)

	// Simulate the PID file the supervisor would have written.
	require.NoError(t, os.WriteFile(paths.PIDFile, []byte("123"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- server.Run(ctx) }()

	waitForSocket(t, paths.Socket)

	info, err := os.Stat(paths.Socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(socketFileMode), info.Mode().Perm())

	conn, err := net.Dial("unix", paths.Socket)
	require.NoError(t, err)
	client := agent.NewClient(conn)

	keys, err := client.List()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "server-key", keys[0].Comment)

	data := []byte("challenge")
	sig, err := client.Sign(signer.PublicKey(), data)
	require.NoError(t, err)
	require.NoError(t, signer.PublicKey().Verify(data, sig))

	require.NoError(t, conn.Close())

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// Socket and PID file are gone after shutdown.
	_, err = os.Stat(paths.Socket)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.PIDFile)
	assert.True(t, os.IsNotExist(err))
}

func TestServerReplacesPreexistingSocketFile(t *testing.T) {
	t.Parallel()

	paths := testPaths(t)
	keyring, _ := serverTestKeyring(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(paths, keyring, logger)

	// Leftover from an unclean previous run.
	require.NoError(t, os.WriteFile(paths.Socket, []byte("stale"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- server.Run(ctx) }()

	waitForSocket(t, paths.Socket)

	conn, err := net.Dial("unix", paths.Socket)
	require.NoError(t, err)

	keys, err := agent.NewClient(conn).List()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	require.NoError(t, conn.Close())

	cancel()
	require.NoError(t, <-runErr)
}

func TestServerConcurrentConnectionsShareTheKeyring(t *testing.T) {
	t.Parallel()

	paths := testPaths(t)
	keyring, _ := serverTestKeyring(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(paths, keyring, logger)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- server.Run(ctx) }()

	waitForSocket(t, paths.Socket)

	// Two clients at once; the mock provider asserts the fetch count
	// stays bounded because the slot caches after first resolution.
	conns := make([]net.Conn, 2)
	for i := range conns {
		conn, err := net.Dial("unix", paths.Socket)
		require.NoError(t, err)
		conns[i] = conn
	}

	for _, conn := range conns {
		keys, err := agent.NewClient(conn).List()
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	}

	for _, conn := range conns {
		require.NoError(t, conn.Close())
	}

	cancel()
	require.NoError(t, <-runErr)
}
