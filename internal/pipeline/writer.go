package pipeline

import (
	"os"
	"path/filepath"
)

// Writer receives one resolved document per planned output path. Paths are
// forward-slash relative; implementations map them to their own storage.
type Writer interface {
	Write(path string, data []byte) error
}

// OSWriter writes documents under a root directory on the local filesystem.
// Distinct documents never share a path, so concurrent writes are safe.
type OSWriter struct {
	Root string
}

// Write implements Writer.
func (w OSWriter) Write(path string, data []byte) error {
	full := filepath.Join(w.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
