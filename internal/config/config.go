// Package config layers the action's optional TOML configuration:
// per-repo .deploygate.toml, then a global config file, then built-in
// defaults. Flags and action inputs always win over config files.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/DeployGate/deploygate-upload-github-action/internal/input"
)

// Config holds the global configuration.
type Config struct {
	Server         string `toml:"server"`
	RetryAttempts  int    `toml:"retry_attempts"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
	PRComment      bool   `toml:"pr_comment"`
}

// RepoConfig holds per-repo overrides from .deploygate.toml.
// PRComment is a pointer so an absent key falls through to the global
// config instead of reading as false.
type RepoConfig struct {
	Server           string `toml:"server"`
	AppOwnerName     string `toml:"app_owner_name"`
	DistributionKey  string `toml:"distribution_key"`
	DistributionName string `toml:"distribution_name"`
	DisableNotify    bool   `toml:"disable_notify"`
	RetryAttempts    int    `toml:"retry_attempts"`
	TimeoutMinutes   int    `toml:"timeout_minutes"`
	PRComment        *bool  `toml:"pr_comment"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:         "https://deploygate.com",
		RetryAttempts:  3,
		TimeoutMinutes: 30,
		PRComment:      true,
	}
}

// DataDir returns the action's data directory. Uses
// DEPLOYGATE_ACTION_DATA_DIR if set, otherwise ~/.deploygate-action.
func DataDir() string {
	if dir := os.Getenv("DEPLOYGATE_ACTION_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".deploygate-action")
}

// GlobalConfigPath returns the path of the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadGlobal loads the global configuration from the default path.
func LoadGlobal() (*Config, error) {
	return LoadGlobalFrom(GlobalConfigPath())
}

// LoadGlobalFrom loads the global configuration from a specific path.
// A missing file yields the defaults, not an error.
func LoadGlobalFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadRepoConfig loads .deploygate.toml from dir. Returns nil when the
// file does not exist.
func LoadRepoConfig(dir string) (*RepoConfig, error) {
	path := filepath.Join(dir, ".deploygate.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg RepoConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolveServer picks the API base URL: explicit value, repo config,
// global config, then the default endpoint.
func ResolveServer(explicit string, repoCfg *RepoConfig, globalCfg *Config) string {
	if explicit != "" {
		return explicit
	}
	if repoCfg != nil && repoCfg.Server != "" {
		return repoCfg.Server
	}
	if globalCfg != nil && globalCfg.Server != "" {
		return globalCfg.Server
	}
	return DefaultConfig().Server
}

// ResolveRetryAttempts picks the retry bound with the same priority
// order as ResolveServer.
func ResolveRetryAttempts(explicit int, repoCfg *RepoConfig, globalCfg *Config) int {
	if explicit > 0 {
		return explicit
	}
	if repoCfg != nil && repoCfg.RetryAttempts > 0 {
		return repoCfg.RetryAttempts
	}
	if globalCfg != nil && globalCfg.RetryAttempts > 0 {
		return globalCfg.RetryAttempts
	}
	return DefaultConfig().RetryAttempts
}

// ResolvePRComment decides whether the PR status comment is posted:
// explicit flag or action input, repo config, global config, then on by
// default. An explicit value follows input.CommentEnabled, so only the
// exact string "false" disables it.
func ResolvePRComment(explicit string, repoCfg *RepoConfig, globalCfg *Config) bool {
	if explicit != "" {
		return input.CommentEnabled(explicit)
	}
	if repoCfg != nil && repoCfg.PRComment != nil {
		return *repoCfg.PRComment
	}
	if globalCfg != nil {
		return globalCfg.PRComment
	}
	return DefaultConfig().PRComment
}

// ResolveTimeoutMinutes picks the per-attempt timeout in minutes.
func ResolveTimeoutMinutes(explicit int, repoCfg *RepoConfig, globalCfg *Config) int {
	if explicit > 0 {
		return explicit
	}
	if repoCfg != nil && repoCfg.TimeoutMinutes > 0 {
		return repoCfg.TimeoutMinutes
	}
	if globalCfg != nil && globalCfg.TimeoutMinutes > 0 {
		return globalCfg.TimeoutMinutes
	}
	return DefaultConfig().TimeoutMinutes
}
