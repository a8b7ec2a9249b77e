package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gsctl-setup/internal/errs"
)

// writeTarGz builds a small .tar.gz fixture with the given entries.
func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range entries {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtract_TarGzStripsNothingWithoutTopLevel(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "gsctl.tar.gz")
	writeTarGz(t, src, map[string]string{
		"gsctl.sh": "#!/bin/sh\n",
		"README":   "readme\n",
	})

	dest := filepath.Join(tmp, "out")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if root != dest {
		t.Fatalf("multiple top-level entries must extract into dest itself, got %q", root)
	}
}

func TestExtract_TarGzSingleTopLevel(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "gsctl-1.2.tar.gz")
	writeTarGz(t, src, map[string]string{
		"gsctl-1.2/gsctl.sh": "#!/bin/sh\necho hi\n",
		"gsctl-1.2/LICENSE":  "MIT\n",
	})

	dest := filepath.Join(tmp, "out")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if root != filepath.Join(dest, "gsctl-1.2") {
		t.Fatalf("unexpected root %q", root)
	}

	info, err := os.Stat(filepath.Join(root, "gsctl.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Error("launcher must keep its executable bit")
	}
}

func TestExtract_Zip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "gsctl.zip")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("gsctl/gsctl.sh")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("#!/bin/sh\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dest := filepath.Join(tmp, "out")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "gsctl.sh")); err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.tar.gz")
	writeTarGz(t, src, map[string]string{
		"../escape.sh": "#!/bin/sh\n",
	})

	dest := filepath.Join(tmp, "out")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(src, dest); err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(tmp, "escape.sh")); !os.IsNotExist(err) {
		t.Fatal("traversal entry must not be written")
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "gsctl.rar")
	if err := os.WriteFile(src, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(src, t.TempDir()); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestSeed_PopulatesRepoDir(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "gsctl-2.0.tar.gz")
	writeTarGz(t, src, map[string]string{
		"gsctl-2.0/gsctl.sh":    "#!/bin/sh\necho v2\n",
		"gsctl-2.0/lib/util.sh": "helpers\n",
	})

	repoDir := filepath.Join(tmp, "server")
	if err := os.Mkdir(repoDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := Seed(src, repoDir); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(repoDir, "gsctl.sh"))
	if err != nil {
		t.Fatalf("launcher must land directly under the repo dir: %v", err)
	}
	if string(got) != "#!/bin/sh\necho v2\n" {
		t.Fatalf("unexpected launcher content %q", got)
	}
	if _, err := os.Stat(filepath.Join(repoDir, "lib", "util.sh")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if _, err := os.Stat(repoDir + ".staging"); !os.IsNotExist(err) {
		t.Error("staging directory must be cleaned up")
	}
}
