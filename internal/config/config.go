package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gsctl-setup/internal/errs"
)

// Environment variables recognized by gsctl-setup.
const (
	// EnvNonInteractive suppresses all prompts. Confirmation defaults to yes
	// and the privilege probe must never block on a password.
	EnvNonInteractive = "GSCTL_SETUP_NONINTERACTIVE"
	// EnvInteractive forces prompts even when CI is detected. Mutually
	// exclusive with EnvNonInteractive.
	EnvInteractive = "GSCTL_SETUP_INTERACTIVE"
	// EnvCI is the conventional CI marker; implies non-interactive.
	EnvCI = "CI"
	// EnvRemote overrides the git remote URL for the gsctl source.
	EnvRemote = "GSCTL_SETUP_REMOTE"
	// EnvAskpass is sudo's own askpass helper variable; when set, sudo is
	// invoked with -A so it uses the helper instead of a terminal prompt.
	EnvAskpass = "SUDO_ASKPASS"
)

// Default install layout. The repository checkout lives in a fixed
// subdirectory of the prefix; bin always lives under the prefix.
const (
	DefaultPrefix    = "/usr/local/gsctl"
	DefaultRemoteURL = "https://github.com/gsctl/gsctl.git"
	DefaultBranch    = "main"
	RepoSubdir       = "server"
	// LauncherScript is the entry script inside the checkout that bin/gsctl
	// symlinks to.
	LauncherScript = "gsctl.sh"
	// DataDirName is the fixed per-user directory for server worlds and
	// caches, created under the invoking user's home.
	DataDirName = "gsctl-data"
)

// Flags holds the environment-derived run configuration, read once at
// startup.
type Flags struct {
	NonInteractive   bool
	ForceInteractive bool
	CI               bool
	RemoteURL        string // Empty means use the configured/default remote
	Askpass          bool
}

// FlagsFromEnv reads the recognized environment variables. The conflicting
// combination of the non-interactive and interactive-force flags is checked
// before anything else and is fatal.
func FlagsFromEnv() (Flags, error) {
	f := Flags{
		NonInteractive:   os.Getenv(EnvNonInteractive) != "",
		ForceInteractive: os.Getenv(EnvInteractive) != "",
		CI:               os.Getenv(EnvCI) != "",
		RemoteURL:        os.Getenv(EnvRemote),
		Askpass:          os.Getenv(EnvAskpass) != "",
	}
	if f.NonInteractive && f.ForceInteractive {
		return Flags{}, &errs.PreconditionError{
			Msg:    EnvNonInteractive + " and " + EnvInteractive + " are mutually exclusive",
			Remedy: "unset one of the two variables and re-run",
		}
	}
	return f, nil
}

// Interactive reports whether the run may prompt the user. CI detection
// implies non-interactive unless explicitly overridden.
func (f Flags) Interactive() bool {
	if f.ForceInteractive {
		return true
	}
	return !f.NonInteractive && !f.CI
}

// Settings is the optional YAML configuration file. Every field has a
// default, so a missing file is not an error.
type Settings struct {
	Remote struct {
		URL    string `yaml:"url"`
		Branch string `yaml:"branch"`
	} `yaml:"remote"`
	Prefix  string `yaml:"prefix"`
	RepoDir string `yaml:"repo_dir"` // Advanced: override the checkout location
	DataDir string `yaml:"data_dir"`
}

// LoadSettings reads the YAML settings file at path, applying defaults for
// anything unset. An empty path or missing file yields pure defaults; a file
// that exists but cannot be parsed is fatal.
func LoadSettings(path string) (Settings, error) {
	var s Settings

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Settings{}, &errs.PreconditionError{
				Msg:    "failed to read config file " + path + ": " + err.Error(),
				Remedy: "check the --config path or remove the flag to use defaults",
			}
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, &s); err != nil {
				return Settings{}, &errs.PreconditionError{
					Msg:    "failed to parse config file " + path + ": " + err.Error(),
					Remedy: "fix the YAML syntax in " + path,
				}
			}
		}
	}

	if s.Remote.URL == "" {
		s.Remote.URL = DefaultRemoteURL
	}
	if s.Remote.Branch == "" {
		s.Remote.Branch = DefaultBranch
	}
	if s.Prefix == "" {
		s.Prefix = DefaultPrefix
	}
	if s.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, &errs.PreconditionError{
				Msg:    "cannot determine home directory: " + err.Error(),
				Remedy: "set data_dir in the config file",
			}
		}
		s.DataDir = filepath.Join(home, DataDirName)
	}
	return s, nil
}

// InstallTarget is the resolved install layout, created once at startup and
// immutable thereafter.
type InstallTarget struct {
	Prefix   string
	RepoDir  string
	CacheDir string
	BinDir   string
}

// NewInstallTarget builds the target layout from settings. The repository
// directory must be either the prefix itself or the fixed subdirectory
// beneath it; anything else is a configuration invariant violation and is
// fatal rather than silently corrected.
func NewInstallTarget(s Settings) (InstallTarget, error) {
	prefix := filepath.Clean(s.Prefix)
	repoDir := filepath.Join(prefix, RepoSubdir)
	if s.RepoDir != "" {
		repoDir = filepath.Clean(s.RepoDir)
	}

	if repoDir != prefix && repoDir != filepath.Join(prefix, RepoSubdir) {
		return InstallTarget{}, &errs.PreconditionError{
			Msg:    "repo_dir " + repoDir + " is neither the prefix nor " + filepath.Join(prefix, RepoSubdir),
			Remedy: "remove the repo_dir override or point it at " + filepath.Join(prefix, RepoSubdir),
		}
	}

	return InstallTarget{
		Prefix:   prefix,
		RepoDir:  repoDir,
		CacheDir: filepath.Clean(s.DataDir),
		BinDir:   filepath.Join(prefix, "bin"),
	}, nil
}

// Launcher returns the absolute path of the launcher script inside the
// checkout.
func (t InstallTarget) Launcher() string {
	return filepath.Join(t.RepoDir, LauncherScript)
}

// LinkNeeded reports whether bin/gsctl must be a symlink to the launcher,
// which is the case whenever the checkout is not the prefix itself.
func (t InstallTarget) LinkNeeded() bool {
	return t.RepoDir != t.Prefix
}
