package fsutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	apperrors "centival/internal/errors"
)

// EnsureDir creates dir and its parents if missing
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.OutputWrite(dir, err)
	}
	return nil
}

// WriteAtomic streams into a temp file next to path, syncs it and renames it into
// place. On any failure the temp file is removed and path is left untouched.
func WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.OutputWrite(path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err = tmp.Sync(); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return apperrors.OutputWrite(path, err)
	}
	return nil
}

// WriteFileAtomic writes data to path with WriteAtomic
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// PrettyJSON marshals v with the given indent and a trailing newline, without HTML escaping
func PrettyJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, apperrors.Wrap(err, "marshal json")
	}
	return buf.Bytes(), nil
}

// Exists reports whether path names an existing file or directory
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
