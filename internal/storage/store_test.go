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
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
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

func TestNewFileStore_WithExistingRecords(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "ava.json"), &mockStoreSpec{Name: "Ava", Value: 1})
	writeFile(t, filepath.Join(tmpDir, "bo.json"), &mockStoreSpec{Name: "Bo", Value: 2})
	if err := os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)

	ava := store.Get("ava")
	if ava == nil {
		t.Fatal("expected ava to be loaded")
	}
	testutil.AssertEqual(t, "ava name", ava.Name, "Ava")
	testutil.AssertEqual(t, "ava value", ava.Value, 1)
}

func TestNewFileStore_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "bad.json"), []byte(`{invalid json`), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err = NewFileStore[*mockStoreSpec](tmpDir)
	testutil.AssertErrorContains(t, err, "unmarshalling")
}

func TestFileStore_GetAll(t *testing.T) {
	tests := map[string]struct {
		records  map[string]*mockStoreSpec
		expCount int
	}{
		"empty records": {
			records:  map[string]*mockStoreSpec{},
			expCount: 0,
		},
		"multiple records": {
			records: map[string]*mockStoreSpec{
				"one": {Name: "One", Value: 1},
				"two": {Name: "Two", Value: 2},
			},
			expCount: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store, err := NewFileStore[*mockStoreSpec](t.TempDir())
			if err != nil {
				t.Fatalf("unexpected error creating store: %v", err)
			}
			store.records = tt.records

			result := store.GetAll()
			testutil.AssertEqual(t, "count", len(result), tt.expCount)

			// Mutating the result must not touch the store
			for k := range result {
				delete(result, k)
			}
			testutil.AssertEqual(t, "store count", len(store.records), tt.expCount)
		})
	}
}

func TestFileStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("ava", &mockStoreSpec{Name: "Initial", Value: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = store.Save("ava", &mockStoreSpec{Name: "Updated", Value: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached := store.Get("ava")
	testutil.AssertEqual(t, "cached name", cached.Name, "Updated")

	var onDisk mockStoreSpec
	found, err := ReadJSON(filepath.Join(tmpDir, "ava.json"), &onDisk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "disk name", onDisk.Name, "Updated")
	testutil.AssertEqual(t, "disk value", onDisk.Value, 2)

	_, err = os.Stat(filepath.Join(tmpDir, "ava.json.tmp"))
	testutil.AssertEqual(t, "temp file removed", os.IsNotExist(err), true)
}

func TestFileStore_Save_RejectsBadId(t *testing.T) {
	store, err := NewFileStore[*mockStoreSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("../escape", &mockStoreSpec{})
	testutil.AssertErrorContains(t, err, "invalid record id")
}

func TestReadJSON_Missing(t *testing.T) {
	var out map[string]any
	found, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
}

func TestNewCatalog(t *testing.T) {
	tests := map[string]struct {
		manifest any
		assets   map[string]any
		expIds   int
		expErr   string
	}{
		"loads listed assets": {
			manifest: map[string][]string{"objects": {"apple", "sword"}},
			assets: map[string]any{
				"apple": Asset[*mockStoreSpec]{Version: 1, Identifier: "apple", Spec: &mockStoreSpec{Name: "Apple"}},
				"sword": Asset[*mockStoreSpec]{Version: 1, Identifier: "sword", Spec: &mockStoreSpec{Name: "Sword"}},
				"extra": Asset[*mockStoreSpec]{Version: 1, Identifier: "extra", Spec: &mockStoreSpec{Name: "Extra"}},
			},
			expIds: 2,
		},
		"missing asset file": {
			manifest: map[string][]string{"objects": {"apple"}},
			assets:   map[string]any{},
			expErr:   "apple: file not found",
		},
		"id mismatch": {
			manifest: map[string][]string{"objects": {"apple"}},
			assets: map[string]any{
				"apple": Asset[*mockStoreSpec]{Version: 1, Identifier: "pear", Spec: &mockStoreSpec{}},
			},
			expErr: "does not match manifest",
		},
		"duplicate manifest entry": {
			manifest: map[string][]string{"objects": {"apple", "apple"}},
			assets: map[string]any{
				"apple": Asset[*mockStoreSpec]{Version: 1, Identifier: "apple", Spec: &mockStoreSpec{}},
			},
			expErr: "duplicate key detected: apple",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, manifestFile), tt.manifest)
			for id, a := range tt.assets {
				writeFile(t, filepath.Join(dir, id+".json"), a)
			}

			c, err := NewCatalog[*mockStoreSpec](dir, "objects")
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "id count", len(c.Ids()), tt.expIds)
			testutil.AssertEqual(t, "has extra", c.Has("extra"), false)
			testutil.AssertEqual(t, "apple name", c.Get("apple").Name, "Apple")
		})
	}
}
