package kuaishou

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveJSON(t *testing.T) {
	t.Parallel()
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	videos := []Video{{ID: "3x1", Caption: "hello"}}
	if err := st.SaveJSON(videos, "search", "测试", "video_list.json"); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(st.Root(), "search", "测试", "video_list.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got []Video
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != "3x1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestStore_SaveJSONOverwrites(t *testing.T) {
	t.Parallel()
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := st.SaveJSON([]int{1, 2, 3}, "out.json"); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveJSON([]int{9}, "out.json"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(st.Root(), "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got []int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("expected [9] after overwrite, got %v", got)
	}
}

func TestWriteFileAtomic_NoTempLeftovers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := writeFileAtomic(filepath.Join(dir, "f.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "f.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only f.json, got %v", names)
	}
}

func TestCleanupStale(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stale := filepath.Join(dir, "kuaishou_user_data_old")
	fresh := filepath.Join(dir, "kuaishou_user_data_new")
	other := filepath.Join(dir, "unrelated_old")
	for _, d := range []string{stale, fresh, other} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	for _, d := range []string{stale, other} {
		if err := os.Chtimes(d, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := CleanupStale(dir, "kuaishou_user_data_", 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupStale: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale profile dir survived")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh profile dir was removed")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-matching dir was removed")
	}
}

func TestCleanupStale_MissingDir(t *testing.T) {
	t.Parallel()
	removed, err := CleanupStale(filepath.Join(t.TempDir(), "absent"), "", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error for missing dir, got %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
