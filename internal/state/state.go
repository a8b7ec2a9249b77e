package state

import (
	"encoding/json" // For JSON encoding and decoding of the receipt file
	"os"
	"path/filepath"
	"time"

	"gsctl-setup/internal/logger"
)

// Receipt records what an install run actually did, so the uninstaller knows
// which rc file to clean and which directories it owns. It lives in the
// user's home, outside the prefix, and therefore survives prefix removal.
type Receipt struct {
	Prefix        string    `json:"prefix"`          // Install prefix that was provisioned
	DataDir       string    `json:"data_dir"`        // Per-user server data directory
	RCFile        string    `json:"rc_file"`         // Shell rc file that received the PATH line
	PathLineAdded bool      `json:"path_line_added"` // Whether this tool added the PATH line
	InstalledAt   time.Time `json:"installed_at"`
}

// DefaultPath returns the receipt location in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gsctl-setup.json"
	}
	return filepath.Join(home, ".gsctl-setup.json")
}

// Load reads the receipt from path. A missing or unreadable file yields an
// empty receipt: the uninstaller then falls back to the default layout.
func Load(path string) *Receipt {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Receipt{}
	}

	var r Receipt
	_ = json.Unmarshal(raw, &r)
	return &r
}

// Save writes the receipt to path as indented JSON. Errors are logged but
// not propagated: a failed receipt write must not fail an otherwise complete
// install.
func Save(path string, r *Receipt) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal install receipt: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing install receipt to %s\n", path)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		logger.Error("[ERROR] Failed to write install receipt %s: %v\n", path, err)
	}
}

// Remove deletes the receipt file; a missing file is fine.
func Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("[WARN] Failed to remove install receipt %s: %v\n", path, err)
	}
}
