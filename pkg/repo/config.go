package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultBranch is the branch HEAD points at after Init when no
// override is given.
const DefaultBranch = "main"

const configFile = "config.toml"

// Config models .grit/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
}

// CoreConfig records init-time repository settings.
type CoreConfig struct {
	// Hash names the object id algorithm ("sha1" or "sha256").
	Hash string `toml:"hash"`
	// Branch is the initial branch name the repository was created with.
	Branch string `toml:"branch"`
}

// UserConfig is the commit identity.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

func configPath(gritDir string) string {
	return filepath.Join(gritDir, configFile)
}

// loadConfig reads config.toml under gritDir. A missing file yields the
// zero Config so a repository stripped of its config still opens with
// the defaults.
func loadConfig(gritDir string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(configPath(gritDir), &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func writeConfig(gritDir string, cfg Config) error {
	f, err := os.Create(configPath(gritDir))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("config: %w", err)
	}
	return f.Close()
}

// Config returns the repository configuration.
func (r *Repo) Config() (Config, error) {
	return loadConfig(r.GritDir)
}

// SetUser records the commit identity in config.toml.
func (r *Repo) SetUser(name, email string) error {
	cfg, err := loadConfig(r.GritDir)
	if err != nil {
		return err
	}
	cfg.User.Name = name
	cfg.User.Email = email
	return writeConfig(r.GritDir, cfg)
}
