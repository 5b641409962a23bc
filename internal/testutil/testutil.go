// Package testutil provides common test utilities for hpdata.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnv provides a sandboxed test environment that validates all paths
// stay within a temporary directory.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a new sandboxed test environment.
// The environment is automatically cleaned up when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{
		t:       t,
		rootDir: t.TempDir(),
	}
}

// RootDir returns the root directory of the test environment.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path returns an absolute path within the test environment.
// It fails the test if the path escapes the sandbox.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	cleanPath := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	if !e.isWithinSandbox(cleanPath) {
		e.t.Fatalf("path %q escapes test sandbox %q", cleanPath, e.rootDir)
	}
	return cleanPath
}

func (e *TestEnv) isWithinSandbox(path string) bool {
	root := filepath.Clean(e.rootDir)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// WriteFile writes content to a file within the test environment,
// creating parent directories as needed.
func (e *TestEnv) WriteFile(path string, content []byte) {
	e.t.Helper()

	absPath := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		e.t.Fatalf("failed to create directory for %q: %v", absPath, err)
	}
	if err := os.WriteFile(absPath, content, 0o644); err != nil {
		e.t.Fatalf("failed to write file %q: %v", absPath, err)
	}
}

// WriteFileString writes a string to a file within the test environment.
func (e *TestEnv) WriteFileString(path, content string) {
	e.t.Helper()
	e.WriteFile(path, []byte(content))
}

// ReadFile reads a file from within the test environment.
func (e *TestEnv) ReadFile(path string) []byte {
	e.t.Helper()

	absPath := e.Path(path)
	content, err := os.ReadFile(absPath)
	if err != nil {
		e.t.Fatalf("failed to read file %q: %v", absPath, err)
	}
	return content
}

// ReadFileString reads a file as a string from within the test environment.
func (e *TestEnv) ReadFileString(path string) string {
	e.t.Helper()
	return string(e.ReadFile(path))
}

// FileExists checks if a file exists within the test environment.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()
	_, err := os.Stat(e.Path(path))
	return err == nil
}

// RequireFileExists fails the test if path does not exist.
func (e *TestEnv) RequireFileExists(path string) {
	e.t.Helper()
	if !e.FileExists(path) {
		e.t.Fatalf("expected file %q to exist", e.Path(path))
	}
}

// RequireFileNotExists fails the test if path exists.
func (e *TestEnv) RequireFileNotExists(path string) {
	e.t.Helper()
	if e.FileExists(path) {
		e.t.Fatalf("expected file %q to not exist", e.Path(path))
	}
}

// Chdir changes the working directory to a path within the test environment
// and restores it when the test completes.
func (e *TestEnv) Chdir(path string) {
	e.t.Helper()

	absPath := e.Path(path)
	origDir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(absPath); err != nil {
		e.t.Fatalf("failed to change directory to %q: %v", absPath, err)
	}
	e.t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			e.t.Errorf("failed to restore directory to %q: %v", origDir, err)
		}
	})
}

// NewIPv4Server starts a test server bound to IPv4 loopback to avoid IPv6 listener issues.
func NewIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}
