package kuaishou

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the crawler reads. Loaded from a YAML file; missing
// keys keep their defaults.
type Config struct {
	CrawlerType    string   `yaml:"crawler_type"`
	SearchKeywords []string `yaml:"search_keywords"`
	VideoIDList    []string `yaml:"video_id_list"`
	CreatorIDList  []string `yaml:"creator_id_list"`

	MaxPages        int  `yaml:"max_pages"`
	MaxCommentPages int  `yaml:"max_comment_pages"`
	GetComments     bool `yaml:"get_comments"`
	GetVideoDetail  bool `yaml:"get_video_detail"`

	Headless      bool        `yaml:"headless"`
	LoginRequired bool        `yaml:"login_required"`
	LoginTimeout  int         `yaml:"login_timeout"` // seconds
	UseProxy      bool        `yaml:"use_proxy"`
	IPProxyInfo   IPProxyInfo `yaml:"ip_proxy_info"`

	ScheduleEnabled  bool     `yaml:"schedule_enabled"`
	ScheduleInterval int      `yaml:"schedule_interval"` // minutes
	MonitorUserList  []string `yaml:"monitor_user_list"`

	VideoFilter VideoFilter `yaml:"video_filter"`

	Concurrency  int    `yaml:"concurrency"`
	DataDir      string `yaml:"data_dir"`
	BrowserDir   string `yaml:"browser_dir"`
	TempDir      string `yaml:"temp_dir"`
	RetentionAge int    `yaml:"retention_age"` // days, browser profiles and temp artifacts
	LogLevel     string `yaml:"log_level"`
}

// IPProxyInfo describes an authenticated HTTP proxy endpoint.
type IPProxyInfo struct {
	IP       string `yaml:"ip"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// URL renders the proxy info as a proxy URL, or "" when unset.
func (p IPProxyInfo) URL() string {
	if p.IP == "" || p.Port == "" {
		return ""
	}
	if p.Username != "" && p.Password != "" {
		return fmt.Sprintf("http://%s:%s@%s:%s", p.Username, p.Password, p.IP, p.Port)
	}
	return fmt.Sprintf("http://%s:%s", p.IP, p.Port)
}

// VideoFilter is the item-level filter applied during pagination.
type VideoFilter struct {
	DaysLimit    int   `yaml:"days_limit"`
	MinLikes     int64 `yaml:"min_likes"`
	SaveVideoURL bool  `yaml:"save_video_url"`
}

// Keep reports whether a video passes the date window and like threshold.
// now anchors the date window so runs are reproducible in tests.
func (f VideoFilter) Keep(v Video, now time.Time) bool {
	if f.DaysLimit > 0 {
		earliest := now.AddDate(0, 0, -f.DaysLimit).UnixMilli()
		if v.TimestampMs < earliest {
			return false
		}
	}
	if f.MinLikes > 0 && NormalizeCount(v.LikeCount) < f.MinLikes {
		return false
	}
	return true
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		CrawlerType:      "search",
		SearchKeywords:   []string{"搞笑", "宠物"},
		MaxPages:         3,
		MaxCommentPages:  3,
		GetComments:      true,
		GetVideoDetail:   true,
		Headless:         false,
		LoginTimeout:     60,
		ScheduleInterval: 60,
		Concurrency:      3,
		DataDir:          "data",
		BrowserDir:       "browser_data",
		TempDir:          "temp",
		RetentionAge:     7,
		LogLevel:         "info",
	}
}

// LoadConfig reads path, creating it with defaults when absent.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Write(path); err != nil {
			return nil, err
		}
		logger.Info().Str("path", path).Msg("created default config file")
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Write serializes the config to path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFileAtomic(path, data, 0644)
}

// Validate checks that the selected crawler type has its required inputs.
// These are the only errors that terminate a flow outright.
func (c *Config) Validate() error {
	switch c.CrawlerType {
	case "search":
		if len(c.SearchKeywords) == 0 {
			return fmt.Errorf("%w: search mode requires search_keywords", ErrInvalidConfig)
		}
	case "detail":
		if len(c.VideoIDList) == 0 {
			return fmt.Errorf("%w: detail mode requires video_id_list", ErrInvalidConfig)
		}
	case "creator":
		if len(c.CreatorIDList) == 0 {
			return fmt.Errorf("%w: creator mode requires creator_id_list", ErrInvalidConfig)
		}
	case "monitor":
		if len(c.MonitorUserList) == 0 {
			return fmt.Errorf("%w: monitor mode requires monitor_user_list", ErrInvalidConfig)
		}
	case "":
		return fmt.Errorf("%w: crawler_type is required", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: unknown crawler_type %q", ErrInvalidConfig, c.CrawlerType)
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	return nil
}

// ProxyURL returns the configured proxy URL, or "" when proxying is off.
func (c *Config) ProxyURL() string {
	if !c.UseProxy {
		return ""
	}
	return c.IPProxyInfo.URL()
}
