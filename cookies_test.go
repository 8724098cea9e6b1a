package kuaishou

import (
	"path/filepath"
	"testing"
)

func TestCookieStore_HeaderString(t *testing.T) {
	t.Parallel()
	cs := NewCookieStore()
	cs.SetFromBrowser([]Cookie{
		{Name: "b", Value: "2"},
		{Name: "a", Value: "1"},
	})

	if got := cs.HeaderString(); got != "a=1; b=2" {
		t.Errorf("HeaderString() = %q, want %q", got, "a=1; b=2")
	}
}

func TestCookieStore_HasSession(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cookies []Cookie
		want    bool
	}{
		{"empty", nil, false},
		{"unrelated cookies", []Cookie{{Name: "did", Value: "x"}}, false},
		{"passToken", []Cookie{{Name: "passToken", Value: "tok"}}, true},
		{"userId", []Cookie{{Name: "userId", Value: "123"}}, true},
		{"api_st", []Cookie{{Name: "kuaishou.web.cp.api_st", Value: "st"}}, true},
		{"empty-valued session cookie", []Cookie{{Name: "passToken", Value: ""}}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cs := NewCookieStore()
			cs.SetFromBrowser(tt.cookies)
			if got := cs.HasSession(); got != tt.want {
				t.Errorf("HasSession() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCookieStore_SetFromBrowserReplaces(t *testing.T) {
	t.Parallel()
	cs := NewCookieStore()
	cs.SetFromBrowser([]Cookie{{Name: "old", Value: "1"}})
	cs.SetFromBrowser([]Cookie{{Name: "new", Value: "2"}})

	if cs.Has("old") {
		t.Error("stale cookie survived replacement")
	}
	if !cs.Has("new") {
		t.Error("new cookie missing after replacement")
	}
}

func TestCookieStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cookies.json")

	cs := NewCookieStore()
	cs.SetFromBrowser([]Cookie{
		{Name: "passToken", Value: "tok"},
		{Name: "did", Value: "web_abc"},
	})
	if err := cs.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewCookieStore()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.HasSession() {
		t.Error("session cookie lost in round trip")
	}
	if got := loaded.Snapshot()["did"]; got != "web_abc" {
		t.Errorf("did = %q, want %q", got, "web_abc")
	}
}

func TestCookieStore_LoadMissingFile(t *testing.T) {
	t.Parallel()
	cs := NewCookieStore()
	if err := cs.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error loading a missing file")
	}
}

func TestParseCookieString(t *testing.T) {
	t.Parallel()
	got := ParseCookieString("passToken=tok; did=web_abc;  empty ; k=v=x")
	want := map[string]string{"passToken": "tok", "did": "web_abc", "k": "v=x"}

	if len(got) != len(want) {
		t.Fatalf("expected %d cookies, got %d: %v", len(want), len(got), got)
	}
	for _, c := range got {
		if want[c.Name] != c.Value {
			t.Errorf("cookie %q = %q, want %q", c.Name, c.Value, want[c.Name])
		}
	}
}
