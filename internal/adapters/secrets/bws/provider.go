package bws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/bnema/bws-ssh-agent/internal/domain"
	"github.com/bnema/bws-ssh-agent/internal/ports"
)

// ErrUnavailable means the bws binary is not on PATH.
var ErrUnavailable = errors.New("bws command unavailable")

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, err error)

// Provider fetches secrets through the Bitwarden Secrets Manager CLI.
// Network and auth details stay inside bws; this adapter only shells out
// and decodes the JSON it prints.
type Provider struct {
	accessToken string
	run         runFunc
}

var _ ports.SecretProvider = (*Provider)(nil)

func NewProvider(accessToken string) *Provider {
	return &Provider{accessToken: accessToken, run: runBWSCommand}
}

// secretPayload mirrors the JSON `bws secret get` prints.
type secretPayload struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (p *Provider) Fetch(ctx context.Context, id uuid.UUID) (domain.Secret, error) {
	if err := ctx.Err(); err != nil {
		return domain.Secret{}, err
	}

	stdout, stderr, err := p.run(ctx,
		"secret", "get", id.String(),
		"--access-token", p.accessToken,
		"--output", "json",
	)
	if err != nil {
		return domain.Secret{}, formatError(id, err, stderr)
	}

	var payload secretPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		return domain.Secret{}, fmt.Errorf("bws get %s: decode response: %w", id, err)
	}

	return domain.Secret{Name: payload.Key, Value: payload.Value}, nil
}

func runBWSCommand(ctx context.Context, args ...string) (string, string, error) {
	path, err := exec.LookPath("bws")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate bws command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(id uuid.UUID, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("bws get %s: %w", id, err)
	}

	return fmt.Errorf("bws get %s: %w: %s", id, err, stderr)
}
