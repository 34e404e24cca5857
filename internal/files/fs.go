package files

import (
	"encoding/json"
	"fmt"
	"os"
)

// Disk is the live filesystem collaborator handed to game engines and the
// pipeline. Engines declare the narrow interface they need; Disk satisfies it
// against the local disk.
type Disk struct{}

// DirExists reports whether path exists and is a directory.
func (Disk) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path exists and is a regular file.
func (Disk) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadJSON reads path and unmarshals it into v.
func (Disk) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// WriteJSON marshals v and writes it to path atomically.
func (Disk) WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return AtomicWrite(path, data, 0o644)
}
