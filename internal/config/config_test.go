package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gsctl-setup/internal/errs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvNonInteractive, EnvInteractive, EnvCI, EnvRemote, EnvAskpass} {
		t.Setenv(k, "")
	}
}

func TestFlagsFromEnv_ConflictIsFatalBeforeAnythingElse(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNonInteractive, "1")
	t.Setenv(EnvInteractive, "1")

	_, err := FlagsFromEnv()
	if err == nil {
		t.Fatal("expected error for conflicting flags")
	}
	if !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestFlags_CIImpliesNonInteractive(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCI, "true")

	f, err := FlagsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if f.Interactive() {
		t.Error("CI runs must not be interactive")
	}
}

func TestFlags_ForceInteractiveOverridesCI(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCI, "true")
	t.Setenv(EnvInteractive, "1")

	f, err := FlagsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if !f.Interactive() {
		t.Error("explicit interactive flag should override CI detection")
	}
}

func TestFlags_RemoteOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRemote, "https://example.com/fork.git")

	f, err := FlagsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if f.RemoteURL != "https://example.com/fork.git" {
		t.Errorf("remote override not picked up, got %q", f.RemoteURL)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Remote.URL != DefaultRemoteURL || s.Remote.Branch != DefaultBranch {
		t.Errorf("unexpected remote defaults: %+v", s.Remote)
	}
	if s.Prefix != DefaultPrefix {
		t.Errorf("unexpected prefix default: %q", s.Prefix)
	}
	if filepath.Base(s.DataDir) != DataDirName {
		t.Errorf("data dir should end in %q, got %q", DataDirName, s.DataDir)
	}
}

func TestLoadSettings_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gsctl-setup.yaml")
	content := "remote:\n  url: git@example.com:gs/gsctl.git\n  branch: stable\nprefix: /opt/gsctl\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Remote.URL != "git@example.com:gs/gsctl.git" || s.Remote.Branch != "stable" {
		t.Errorf("unexpected remote: %+v", s.Remote)
	}
	if s.Prefix != "/opt/gsctl" {
		t.Errorf("unexpected prefix: %q", s.Prefix)
	}
}

func TestLoadSettings_BadYAMLIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("remote: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestNewInstallTarget_Layout(t *testing.T) {
	s := Settings{Prefix: "/usr/local/gsctl", DataDir: "/home/u/gsctl-data"}
	s.Remote.URL = DefaultRemoteURL
	s.Remote.Branch = DefaultBranch

	target, err := NewInstallTarget(s)
	if err != nil {
		t.Fatal(err)
	}
	if target.RepoDir != "/usr/local/gsctl/server" {
		t.Errorf("unexpected repo dir: %q", target.RepoDir)
	}
	if target.BinDir != "/usr/local/gsctl/bin" {
		t.Errorf("bin must live under the prefix, got %q", target.BinDir)
	}
	if !target.LinkNeeded() {
		t.Error("separate repo dir requires the launcher symlink")
	}
}

func TestNewInstallTarget_RepoEqualToPrefixIsAllowed(t *testing.T) {
	s := Settings{Prefix: "/opt/gsctl", RepoDir: "/opt/gsctl", DataDir: "/home/u/gsctl-data"}
	target, err := NewInstallTarget(s)
	if err != nil {
		t.Fatal(err)
	}
	if target.LinkNeeded() {
		t.Error("repo dir equal to prefix needs no symlink")
	}
}

func TestNewInstallTarget_InvariantViolationIsFatal(t *testing.T) {
	s := Settings{Prefix: "/opt/gsctl", RepoDir: "/srv/elsewhere", DataDir: "/home/u/gsctl-data"}
	if _, err := NewInstallTarget(s); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition for stray repo dir, got %v", err)
	}
}
