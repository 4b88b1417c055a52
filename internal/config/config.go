package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/bnema/bws-ssh-agent/internal/domain"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/bws-ssh-agent"

	accessTokenKey = "bws.access_token"
	secretIDsKey   = "bws.secret_ids"
	socketPathKey  = "agent.socket_path"
	logLevelKey    = "logging.level"

	defaultLogLevel = "info"
)

// Config is everything the daemon reads at startup. The secret id list
// is ordered; identity enumeration preserves that order.
type Config struct {
	AccessToken string
	SecretIDs   []string
	SocketPath  string
	LogLevel    string

	refs []domain.SecretReference
}

// Load reads the config file (explicit path, or the default under
// ~/.config/bws-ssh-agent) and the BWS_ACCESS_TOKEN environment
// override, then validates the result.
func Load(path string) (*Config, error) {
	cfg := viper.New()

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	cfg.SetDefault(logLevelKey, defaultLogLevel)
	if err := cfg.BindEnv(accessTokenKey, "BWS_ACCESS_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind access token env: %w", err)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// A missing file is fine as long as env + validation hold.
	}

	loaded := &Config{
		AccessToken: cfg.GetString(accessTokenKey),
		SecretIDs:   cfg.GetStringSlice(secretIDsKey),
		SocketPath:  cfg.GetString(socketPathKey),
		LogLevel:    cfg.GetString(logLevelKey),
	}

	if err := loaded.validate(); err != nil {
		return nil, err
	}

	return loaded, nil
}

func (c *Config) validate() error {
	if c.AccessToken == "" {
		return errors.New("bws.access_token is not set (config file or BWS_ACCESS_TOKEN)")
	}
	if len(c.SecretIDs) == 0 {
		return errors.New("bws.secret_ids is empty: configure at least one secret id")
	}

	refs, err := domain.NewSecretReferences(c.SecretIDs)
	if err != nil {
		return fmt.Errorf("parse secret ids: %w", err)
	}
	c.refs = refs

	return nil
}

// References returns the parsed, ordered secret references.
func (c *Config) References() []domain.SecretReference {
	return c.refs
}

// SocketOverride reads only the agent.socket_path setting, skipping
// the credential validation Load performs. Lifecycle commands such as
// stop and status need the socket location even when no access token is
// configured. A missing config file yields the empty string.
func SocketOverride(path string) (string, error) {
	cfg := viper.New()

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read config file: %w", err)
	}

	return cfg.GetString(socketPathKey), nil
}

// DefaultPath is where `init` writes and Load looks by default.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir, configName+"."+configType), nil
}
