package privilege

import (
	"testing"

	"gsctl-setup/internal/execx"
)

func TestCheckAccess_NonInteractiveUsesNonBlockingProbe(t *testing.T) {
	fake := execx.NewFakeRunner()
	b := NewBroker(fake, false, false)

	if got := b.CheckAccess(); got != StatusGranted {
		t.Fatalf("expected granted, got %s", got)
	}
	if len(fake.Calls) != 1 || fake.Calls[0] != "sudo -n true" {
		t.Fatalf("expected a single 'sudo -n true' probe, got %v", fake.Calls)
	}
}

func TestCheckAccess_InteractiveProbe(t *testing.T) {
	fake := execx.NewFakeRunner()
	b := NewBroker(fake, true, false)

	b.CheckAccess()
	if len(fake.Calls) != 1 || fake.Calls[0] != "sudo -v" {
		t.Fatalf("expected a single 'sudo -v' probe, got %v", fake.Calls)
	}
}

func TestCheckAccess_ProbeFailureIsDenied(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.Script("sudo -n true", execx.Result{ExitCode: 1, Stderr: "a password is required"})
	b := NewBroker(fake, false, false)

	if got := b.CheckAccess(); got != StatusDenied {
		t.Fatalf("expected denied, got %s", got)
	}
}

func TestCheckAccess_ResultIsCached(t *testing.T) {
	fake := execx.NewFakeRunner()
	b := NewBroker(fake, false, false)

	b.CheckAccess()
	b.CheckAccess()
	b.CheckAccess()
	if got := fake.CallCount("sudo -n true"); got != 1 {
		t.Fatalf("probe should run exactly once, ran %d times", got)
	}
}

func TestRunElevated_PrependsSudoWhenGranted(t *testing.T) {
	fake := execx.NewFakeRunner()
	b := NewBroker(fake, false, false)

	if _, err := b.RunElevated("mkdir", "-p", "/usr/local/gsctl"); err != nil {
		t.Fatal(err)
	}
	last := fake.Calls[len(fake.Calls)-1]
	if last != "sudo mkdir -p /usr/local/gsctl" {
		t.Fatalf("expected elevated mkdir, got %q", last)
	}
}

func TestRunElevated_RunsDirectlyWhenDenied(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.Script("sudo -n true", execx.Result{ExitCode: 1})
	b := NewBroker(fake, false, false)

	if _, err := b.RunElevated("mkdir", "-p", "/tmp/x"); err != nil {
		t.Fatal(err)
	}
	last := fake.Calls[len(fake.Calls)-1]
	if last != "mkdir -p /tmp/x" {
		t.Fatalf("expected direct mkdir, got %q", last)
	}
}

func TestRunElevated_AskpassFlag(t *testing.T) {
	fake := execx.NewFakeRunner()
	b := NewBroker(fake, false, true)

	if _, err := b.RunElevated("rm", "-rf", "/usr/local/gsctl"); err != nil {
		t.Fatal(err)
	}
	if fake.Calls[0] != "sudo -A -n true" {
		t.Fatalf("expected askpass probe, got %q", fake.Calls[0])
	}
	last := fake.Calls[len(fake.Calls)-1]
	if last != "sudo -A rm -rf /usr/local/gsctl" {
		t.Fatalf("expected askpass elevation, got %q", last)
	}
}
