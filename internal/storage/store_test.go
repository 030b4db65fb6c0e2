package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockStoreSpec implements ValidatingSpec for testing FileStore
type mockStoreSpec struct {
	Name string `json:"name"`
	File string `json:"file"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, path string, asset Asset[*mockStoreSpec]) {
	t.Helper()

	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, filepath.Join(tmpDir, "anchor.json"), Asset[*mockStoreSpec]{
		Version:    1,
		Identifier: "anchor",
		Spec:       &mockStoreSpec{Name: "Anchorhead", File: "anchor.z8"},
	})
	writeAsset(t, filepath.Join(tmpDir, "h2g2.json"), Asset[*mockStoreSpec]{
		Version:    1,
		Identifier: "h2g2",
		Spec:       &mockStoreSpec{Name: "Hitchhiker's Guide To The Galaxy", File: "hhgg.z3"},
	})

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)

	anchor := store.Get("anchor")
	if anchor == nil {
		t.Fatal("expected anchor to be loaded")
	}
	testutil.AssertEqual(t, "anchor name", anchor.Name, "Anchorhead")
	testutil.AssertEqual(t, "anchor file", anchor.File, "anchor.z8")
}

func TestNewFileStore_Errors(t *testing.T) {
	tests := map[string]struct {
		setup func(t *testing.T, dir string)
	}{
		"invalid json": {
			setup: func(t *testing.T, dir string) {
				err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid json`), 0644)
				if err != nil {
					t.Fatalf("failed to write test file: %v", err)
				}
			},
		},
		"validation error": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, filepath.Join(dir, "test.json"), Asset[*mockStoreSpec]{
					Identifier: "test",
					Spec:       &mockStoreSpec{Name: "Test"},
				})
			},
		},
		"duplicate key": {
			setup: func(t *testing.T, dir string) {
				sub := filepath.Join(dir, "subdir")
				if err := os.Mkdir(sub, 0755); err != nil {
					t.Fatalf("failed to create subdir: %v", err)
				}
				asset := Asset[*mockStoreSpec]{
					Version:    1,
					Identifier: "duplicate-id",
					Spec:       &mockStoreSpec{Name: "Test"},
				}
				writeAsset(t, filepath.Join(dir, "file1.json"), asset)
				writeAsset(t, filepath.Join(sub, "file2.json"), asset)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setup(t, tmpDir)

			_, err := NewFileStore[*mockStoreSpec](tmpDir)
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewFileStore_IgnoresNonJSONFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, filepath.Join(tmpDir, "valid.json"), Asset[*mockStoreSpec]{
		Version:    1,
		Identifier: "valid",
		Spec:       &mockStoreSpec{Name: "Valid"},
	})
	err := os.WriteFile(filepath.Join(tmpDir, "story.z5"), []byte("binary"), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 1)
}

func TestFileStore_GetAll(t *testing.T) {
	store, err := NewFileStore[*mockStoreSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"one": {Name: "One"},
		"two": {Name: "Two"},
	}

	result := store.GetAll()
	testutil.AssertEqual(t, "count", len(result), 2)

	delete(result, "one")
	testutil.AssertEqual(t, "store count after mutating copy", len(store.records), 2)
}
