package profile

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"gsctl-setup/internal/logger"
)

// marker tags the single PATH line this tool manages, so removal can strip
// exactly that line and nothing else.
const marker = "# added by gsctl-setup"

// ExportLine renders the PATH export for the given bin directory.
func ExportLine(binDir string) string {
	return fmt.Sprintf(`export PATH="%s:$PATH" %s`, binDir, marker)
}

// DefaultRCPath resolves the current user's shell rc file, detecting zsh or
// bash from the SHELL environment variable and defaulting to zsh.
func DefaultRCPath() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	shellrc := ".zshrc"
	if strings.Contains(os.Getenv("SHELL"), "bash") {
		shellrc = ".bashrc"
	}
	return filepath.Join(usr.HomeDir, shellrc), nil
}

// AddPathLine appends the managed PATH export to the rc file, creating the
// file if needed. The line is never duplicated: if it is already present the
// file is left untouched.
func AddPathLine(rcPath, binDir string) error {
	line := ExportLine(binDir)

	existing := make(map[string]bool)
	if f, err := os.Open(rcPath); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			existing[strings.TrimSpace(scanner.Text())] = true
		}
		_ = f.Close()
	}
	if existing[line] {
		logger.Debug("[DEBUG] PATH line already present in %s\n", rcPath)
		return nil
	}

	file, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %s for appending: %w", rcPath, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write PATH line to %s: %w", rcPath, err)
	}
	logger.Info("[INFO] Added to %s: %s\n", rcPath, line)
	return nil
}

// RemovePathLine strips every line carrying the managed marker from the rc
// file and leaves all other lines byte-for-byte intact. A missing rc file is
// a no-op.
func RemovePathLine(rcPath string) error {
	raw, err := os.ReadFile(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read %s: %w", rcPath, err)
	}

	lines := strings.Split(string(raw), "\n")
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, l := range lines {
		if strings.Contains(l, marker) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	if removed == 0 {
		return nil
	}

	if err := os.WriteFile(rcPath, []byte(strings.Join(kept, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", rcPath, err)
	}
	logger.Info("[INFO] Removed PATH line from %s\n", rcPath)
	return nil
}
