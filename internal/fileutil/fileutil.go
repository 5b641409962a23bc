package fileutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileExists checks if a file exists at the given path
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteFileAtomic writes data to a sibling temp file and renames it over filePath,
// so readers never observe a half-written file.
func WriteFileAtomic(filePath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}
	return nil
}

// MarshalJSON encodes data the way every artifact is stored on disk:
// two-space indentation, UTF-8, no HTML escaping.
func MarshalJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	// Encoder always terminates with a newline; artifacts are stored without it.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSONFile writes data as JSON to a file, respecting the overwrite flag
// Returns true if the file was written, false if it was skipped
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	// Check if file exists and we shouldn't overwrite
	if FileExists(filePath) && !overwrite {
		slog.Info("JSON file already exists, skipping", "filename", filePath, "overwrite", overwrite)
		return false, nil
	}

	jsonData, err := MarshalJSON(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	slog.Debug("Writing JSON file", "filename", filePath, "bytes", len(jsonData))
	if err := WriteFileAtomic(filePath, jsonData, 0644); err != nil {
		return false, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return true, nil
}

// WriteIndentedJSON re-indents an already encoded JSON document and writes it
// unchanged in content.
func WriteIndentedJSON(raw []byte, filePath string) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return WriteFileAtomic(filePath, buf.Bytes(), 0644)
}

// ReadJSONFile decodes the JSON document at filePath into a T.
func ReadJSONFile[T any](filePath string) (T, error) {
	var out T
	data, err := os.ReadFile(filePath)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return out, nil
}

// ClearJSONArray overwrites filePath with an empty JSON array.
func ClearJSONArray(filePath string) error {
	if err := WriteFileAtomic(filePath, []byte("[]"), 0644); err != nil {
		return fmt.Errorf("failed to clear output file %s: %w", filePath, err)
	}
	slog.Info("Output file cleared", "path", filePath)
	return nil
}
