package testsupport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// EnvUpdateGolden rewrites golden files with the actual output when set.
const EnvUpdateGolden = "INVENTORY_UPDATE_GOLDEN"

// FixturePath returns the path of a file under the package testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath returns the path of a golden file under testdata/golden.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// LoadFixture reads a fixture file, failing the test when it is missing.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// MarshalGolden renders v the way golden files store it: indented JSON
// with a trailing newline.
func MarshalGolden(t testing.TB, v any) []byte {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal golden value: %v", err)
	}
	return append(data, '\n')
}

// CompareWithGolden compares actual with the golden file at path. A missing
// golden file is created, and every golden file is rewritten when
// EnvUpdateGolden is set.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	if os.Getenv(EnvUpdateGolden) != "" {
		writeGolden(t, path, actual)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("golden file %s does not exist, creating it", path)
			writeGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if !bytes.Equal(bytes.TrimSpace(actual), bytes.TrimSpace(expected)) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

func writeGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}
