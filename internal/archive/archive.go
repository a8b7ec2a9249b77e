// Package archive seeds the gsctl source tree from an offline release
// archive when the git remote is unreachable or an explicit archive was
// requested. The next online install run bootstraps the same directory from
// git as usual.
package archive

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/logger"
)

// Seed populates repoDir with the contents of the release archive at src,
// which may be a local path or an http(s) URL. The archive's single
// top-level directory, when present, is stripped so the launcher script ends
// up directly under repoDir.
func Seed(src, repoDir string) error {
	local := src
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		tmp := filepath.Join(os.TempDir(), filepath.Base(src))
		if err := download(src, tmp); err != nil {
			return err
		}
		defer os.Remove(tmp)
		local = tmp
	}

	// Stage next to the destination so the final moves are plain renames.
	staging := repoDir + ".staging"
	if err := os.MkdirAll(staging, 0755); err != nil {
		return &errs.OperationError{Path: staging, Cmd: "mkdir -p " + staging, Msg: err.Error()}
	}
	defer os.RemoveAll(staging)

	root, err := Extract(local, staging)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return &errs.OperationError{Path: root, Cmd: "ls " + root, Msg: err.Error()}
	}
	for _, e := range entries {
		from := filepath.Join(root, e.Name())
		to := filepath.Join(repoDir, e.Name())
		_ = os.RemoveAll(to)
		if err := os.Rename(from, to); err != nil {
			return &errs.OperationError{Path: to, Cmd: "mv " + from + " " + to, Msg: err.Error()}
		}
	}
	logger.Debug("[DEBUG] Seeded %s from archive %s\n", repoDir, src)
	return nil
}

// download fetches the content at url into destPath.
func download(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return &errs.OperationError{Cmd: "curl -L " + url, Msg: err.Error()}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %s\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return &errs.OperationError{Cmd: "curl -L " + url, Msg: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return &errs.OperationError{Path: destPath, Cmd: "create " + destPath, Msg: err.Error()}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close destination file: %s\n", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return &errs.OperationError{Path: destPath, Cmd: "curl -L " + url, Msg: err.Error()}
	}
	logger.Debug("[DEBUG] Downloaded archive to: %s\n", destPath)
	return nil
}

// Extract routes to the appropriate extraction function based on archive
// type and returns the extracted root: the archive's single top-level
// directory when it has one, dest otherwise.
func Extract(src, dest string) (string, error) {
	switch {
	case strings.HasSuffix(src, ".zip"):
		return extractZip(src, dest)
	case strings.HasSuffix(src, ".7z"):
		return extract7z(src, dest)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"):
		return extractTarArchive(src, dest)
	default:
		return "", &errs.PreconditionError{
			Msg:    "unsupported archive format: " + src,
			Remedy: "provide a .tar.gz, .tar.bz2, .tar.xz, .zip, or .7z release archive",
		}
	}
}

// securePath joins name under dest, rejecting entries that would escape it.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", &errs.OperationError{Path: name, Cmd: "extract " + name, Msg: "archive entry escapes the destination directory"}
	}
	return target, nil
}

// extractTarArchive handles tar and compressed tar variants, preserving file
// modes so the launcher script keeps its executable bit.
func extractTarArchive(src, dest string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	roots := map[string]bool{}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		name := filepath.Clean(hdr.Name)
		roots[strings.Split(name, string(os.PathSeparator))[0]] = true

		target, err := securePath(dest, name)
		if err != nil {
			return "", err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", err
			}
			outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return "", err
			}
			outFile.Close()
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return "", err
			}
		}
	}
	return extractedRoot(dest, roots), nil
}

// extractZip extracts a .zip archive.
func extractZip(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", err
	}
	defer r.Close()

	roots := map[string]bool{}
	for _, f := range r.File {
		name := filepath.Clean(f.Name)
		roots[strings.Split(name, string(os.PathSeparator))[0]] = true

		path, err := securePath(dest, name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return extractedRoot(dest, roots), nil
}

// extract7z handles .7z extraction using the sevenzip library.
func extract7z(src, dest string) (string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	roots := map[string]bool{}
	for _, f := range r.File {
		name := filepath.Clean(f.Name)
		roots[strings.Split(name, string(os.PathSeparator))[0]] = true

		path, err := securePath(dest, name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return extractedRoot(dest, roots), nil
}

// extractedRoot returns the single top-level directory when the archive has
// exactly one, and dest otherwise.
func extractedRoot(dest string, roots map[string]bool) string {
	if len(roots) != 1 {
		return dest
	}
	for name := range roots {
		candidate := filepath.Join(dest, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return dest
}
