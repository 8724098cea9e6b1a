package kuaishou

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Session-indicator cookies. Any one of them present and non-empty means the
// browser holds a logged-in Kuaishou session.
var sessionCookieNames = []string{"passToken", "userId", "kuaishou.web.cp.api_st"}

// Cookie is one browser cookie persisted to cookies.json.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// CookieStore holds the harvested session cookies. Single writer (the session
// acquirer), many readers (API client snapshots). Replacement is atomic: a
// reader never observes a half-updated set.
type CookieStore struct {
	mu      sync.RWMutex
	cookies map[string]string
}

// NewCookieStore returns an empty store.
func NewCookieStore() *CookieStore {
	return &CookieStore{cookies: make(map[string]string)}
}

// SetFromBrowser replaces the whole cookie set with the given browser cookies.
func (cs *CookieStore) SetFromBrowser(cookies []Cookie) {
	next := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if c.Name != "" {
			next[c.Name] = c.Value
		}
	}
	cs.mu.Lock()
	cs.cookies = next
	cs.mu.Unlock()
}

// Has reports whether the named cookie is present with a non-empty value.
func (cs *CookieStore) Has(name string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.cookies[name] != ""
}

// HasSession reports whether any known session-indicator cookie is present.
func (cs *CookieStore) HasSession() bool {
	for _, name := range sessionCookieNames {
		if cs.Has(name) {
			return true
		}
	}
	return false
}

// HeaderString renders the cookies as a Cookie header value ("a=1; b=2").
// Names are sorted for deterministic output.
func (cs *CookieStore) HeaderString() string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	names := make([]string, 0, len(cs.cookies))
	for name := range cs.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+cs.cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// Snapshot returns a copy of the current cookie map.
func (cs *CookieStore) Snapshot() map[string]string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]string, len(cs.cookies))
	for k, v := range cs.cookies {
		out[k] = v
	}
	return out
}

// Save writes the cookie set to a JSON file (array of cookie objects).
func (cs *CookieStore) Save(path string) error {
	cs.mu.RLock()
	cookies := make([]Cookie, 0, len(cs.cookies))
	for name, value := range cs.cookies {
		cookies = append(cookies, Cookie{Name: name, Value: value, Domain: ".kuaishou.com", Path: "/"})
	}
	cs.mu.RUnlock()

	sort.Slice(cookies, func(i, j int) bool { return cookies[i].Name < cookies[j].Name })

	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return writeFileAtomic(path, data, 0600)
}

// Load reads cookies from a JSON file and replaces the store contents.
func (cs *CookieStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookies file: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("unmarshal cookies: %w", err)
	}
	cs.SetFromBrowser(cookies)
	return nil
}

// ParseCookieString converts a "k1=v1; k2=v2" header string into cookies.
func ParseCookieString(s string) []Cookie {
	var out []Cookie
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		out = append(out, Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out
}
