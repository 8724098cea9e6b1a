package kuaishou

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_CreatesDefaultWhenAbsent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CrawlerType != "search" {
		t.Errorf("expected default crawler_type search, got %q", cfg.CrawlerType)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("expected default concurrency 3, got %d", cfg.Concurrency)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "crawler_type: detail\nvideo_id_list:\n  - \"3x123\"\nmax_pages: 7\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CrawlerType != "detail" {
		t.Errorf("crawler_type = %q, want detail", cfg.CrawlerType)
	}
	if cfg.MaxPages != 7 {
		t.Errorf("max_pages = %d, want 7", cfg.MaxPages)
	}
	if cfg.MaxCommentPages != 3 {
		t.Errorf("max_comment_pages lost its default, got %d", cfg.MaxCommentPages)
	}
	if cfg.DataDir != "data" {
		t.Errorf("data_dir lost its default, got %q", cfg.DataDir)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default search config", func(*Config) {}, false},
		{"search without keywords", func(c *Config) { c.SearchKeywords = nil }, true},
		{"detail with ids", func(c *Config) {
			c.CrawlerType = "detail"
			c.VideoIDList = []string{"3x1"}
		}, false},
		{"detail without ids", func(c *Config) { c.CrawlerType = "detail" }, true},
		{"creator without ids", func(c *Config) { c.CrawlerType = "creator" }, true},
		{"monitor without users", func(c *Config) { c.CrawlerType = "monitor" }, true},
		{"empty type", func(c *Config) { c.CrawlerType = "" }, true},
		{"unknown type", func(c *Config) { c.CrawlerType = "livestream" }, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_DefaultsConcurrency(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Concurrency = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Concurrency)
	}
}

func TestIPProxyInfoURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		info IPProxyInfo
		want string
	}{
		{"unset", IPProxyInfo{}, ""},
		{"no auth", IPProxyInfo{IP: "1.2.3.4", Port: "8080"}, "http://1.2.3.4:8080"},
		{"with auth", IPProxyInfo{IP: "1.2.3.4", Port: "8080", Username: "u", Password: "p"}, "http://u:p@1.2.3.4:8080"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.info.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVideoFilterKeep(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -2).UnixMilli()
	old := now.AddDate(0, 0, -30).UnixMilli()

	tests := []struct {
		name   string
		filter VideoFilter
		video  Video
		want   bool
	}{
		{"no filter keeps everything", VideoFilter{}, Video{TimestampMs: old}, true},
		{"inside window", VideoFilter{DaysLimit: 7}, Video{TimestampMs: recent}, true},
		{"outside window", VideoFilter{DaysLimit: 7}, Video{TimestampMs: old}, false},
		{"likes above threshold", VideoFilter{MinLikes: 100}, Video{TimestampMs: recent, LikeCount: "1.5万"}, true},
		{"likes below threshold", VideoFilter{MinLikes: 100}, Video{TimestampMs: recent, LikeCount: "99"}, false},
		{"unparseable likes excluded", VideoFilter{MinLikes: 1}, Video{TimestampMs: recent, LikeCount: "??"}, false},
		{"both conditions", VideoFilter{DaysLimit: 7, MinLikes: 10}, Video{TimestampMs: recent, LikeCount: "50"}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.filter.Keep(tt.video, now); got != tt.want {
				t.Errorf("Keep() = %v, want %v", got, tt.want)
			}
		})
	}
}
