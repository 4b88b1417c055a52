package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o700
)

const configHeader = `# bws-ssh-agent configuration.
#
# access_token may be left empty here and supplied via the
# BWS_ACCESS_TOKEN environment variable instead.
# secret_ids are Bitwarden Secrets Manager secret ids, listed in the
# order identities should be offered to SSH clients.

`

type fileSchema struct {
	BWS struct {
		AccessToken string   `toml:"access_token"`
		SecretIDs   []string `toml:"secret_ids"`
	} `toml:"bws"`
	Logging struct {
		Level string `toml:"level"`
	} `toml:"logging"`
}

// WriteDefault creates a commented starter config at path with
// owner-only permissions. It refuses to clobber an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	var schema fileSchema
	schema.BWS.SecretIDs = []string{}
	schema.Logging.Level = defaultLogLevel

	encoded, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), encoded...), configFileMode); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}
