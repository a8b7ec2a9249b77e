package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddPathLine_AppendsOnce(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(rc, []byte("alias ll='ls -al'\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AddPathLine(rc, "/usr/local/gsctl/bin"); err != nil {
		t.Fatal(err)
	}
	if err := AddPathLine(rc, "/usr/local/gsctl/bin"); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(rc)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(raw), ExportLine("/usr/local/gsctl/bin")); got != 1 {
		t.Fatalf("PATH line must appear exactly once, found %d:\n%s", got, raw)
	}
}

func TestAddPathLine_CreatesMissingFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	if err := AddPathLine(rc, "/opt/gsctl/bin"); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), ExportLine("/opt/gsctl/bin")) {
		t.Fatalf("expected PATH line in new file, got:\n%s", raw)
	}
}

func TestRemovePathLine_StripsOnlyManagedLine(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	content := "alias ll='ls -al'\n" +
		ExportLine("/usr/local/gsctl/bin") + "\n" +
		"export PATH=\"$HOME/bin:$PATH\"\n"
	if err := os.WriteFile(rc, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RemovePathLine(rc); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(rc)
	if err != nil {
		t.Fatal(err)
	}
	got := string(raw)
	if strings.Contains(got, "gsctl-setup") {
		t.Errorf("managed line must be gone:\n%s", got)
	}
	if !strings.Contains(got, "alias ll='ls -al'") {
		t.Errorf("unrelated alias line must survive:\n%s", got)
	}
	if !strings.Contains(got, `export PATH="$HOME/bin:$PATH"`) {
		t.Errorf("unrelated PATH line must survive:\n%s", got)
	}
}

func TestRemovePathLine_MissingFileIsNoop(t *testing.T) {
	if err := RemovePathLine(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatal(err)
	}
}
