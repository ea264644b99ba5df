package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxWorkers is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxWorkers != 5 {
			t.Errorf("expected MaxWorkers to be 5, got %d", cfg.MaxWorkers)
		}
	})

	t.Run("default MaxDepth is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 3 {
			t.Errorf("expected MaxDepth to be 3, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default MaxTime is 300 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxTime != 300*time.Second {
			t.Errorf("expected MaxTime to be 300s, got %v", cfg.MaxTime)
		}
	})

	t.Run("default MaxPages is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages to be 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("default RequestTimeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestTimeout != 10*time.Second {
			t.Errorf("expected RequestTimeout to be 10s, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("people are not merged by default", func(t *testing.T) {
		t.Parallel()
		if cfg.MergePeople {
			t.Error("expected MergePeople to be false")
		}
	})

	t.Run("results are saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://acme.test"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero depth is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "empty targets", modify: func(c *Config) { c.Targets = nil }, want: ErrNoTarget},
		{name: "zero workers", modify: func(c *Config) { c.MaxWorkers = 0 }, want: ErrInvalidMaxWorkers},
		{name: "negative depth", modify: func(c *Config) { c.MaxDepth = -1 }, want: ErrInvalidMaxDepth},
		{name: "zero time budget", modify: func(c *Config) { c.MaxTime = 0 }, want: ErrInvalidMaxTime},
		{name: "zero page budget", modify: func(c *Config) { c.MaxPages = 0 }, want: ErrInvalidMaxPages},
		{name: "negative request timeout", modify: func(c *Config) { c.RequestTimeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "json and markdown", modify: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, want: ErrConflictingReportFormats},
		{name: "negative rate", modify: func(c *Config) { c.RequestsPerSecond = -1 }, want: ErrInvalidRate},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, want: ErrInvalidMaxBodySize},
		{name: "tor with proxy", modify: func(c *Config) { c.UseTor = true; c.ProxyAddress = "127.0.0.1:1080" }, want: ErrConflictingProxy},
	}

	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigForSite(t *testing.T) {
	t.Parallel()

	t.Run("without a config file the copy equals the original", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		got, site := cfg.ForSite("acme.test")
		if got == cfg {
			t.Fatal("expected a copy")
		}
		if got.MaxPages != cfg.MaxPages || site.Cookie != "" {
			t.Errorf("unexpected overrides: %+v %+v", got, site)
		}
	})

	t.Run("site overrides replace limits", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{
				"acme.test": {MaxDepth: intPtr(1), MaxPages: 10, MaxWorkers: 2, Cookie: "s=1"},
			},
		}

		got, site := cfg.ForSite("acme.test")
		if got.MaxDepth != 1 || got.MaxPages != 10 || got.MaxWorkers != 2 {
			t.Errorf("overrides not applied: %+v", got)
		}
		if site.Cookie != "s=1" {
			t.Errorf("expected cookie, got %q", site.Cookie)
		}
		if cfg.MaxPages != DefaultMaxPages {
			t.Error("original config was modified")
		}
	})

	t.Run("explicit zero depth limits a site to its start page", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "leadcrawl.yaml")
		content := "defaults:\n  max_depth: 2\nsites:\n  acme.test:\n    max_depth: 0\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.SiteConfigs = file
		if got, _ := cfg.ForSite("acme.test"); got.MaxDepth != 0 {
			t.Errorf("expected depth 0 for acme.test, got %d", got.MaxDepth)
		}
		if got, _ := cfg.ForSite("globex.test"); got.MaxDepth != 2 {
			t.Errorf("expected the default depth 2 for other sites, got %d", got.MaxDepth)
		}
	})
}

func intPtr(n int) *int {
	return &n
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{MaxDepth: intPtr(2), Cookie: "default_cookie=abc"},
			Sites:    map[string]SiteConfig{},
		}

		cfg := file.GetSiteConfig("unknown.test")
		if cfg.MaxDepth == nil || *cfg.MaxDepth != 2 {
			t.Errorf("expected depth 2, got %v", cfg.MaxDepth)
		}
		if cfg.Cookie != "default_cookie=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{Headers: map[string]string{"X-Default": "value1", "Authorization": "default"}},
			Sites: map[string]SiteConfig{
				"acme.test": {Headers: map[string]string{"X-Custom": "value2", "Authorization": "site"}},
			},
		}

		cfg := file.GetSiteConfig("acme.test")
		if cfg.Headers["X-Default"] != "value1" || cfg.Headers["X-Custom"] != "value2" {
			t.Errorf("expected merged headers, got %v", cfg.Headers)
		}
		if cfg.Headers["Authorization"] != "site" {
			t.Errorf("expected site header to override, got %q", cfg.Headers["Authorization"])
		}
		if file.Defaults.Headers["Authorization"] != "default" {
			t.Error("defaults were mutated by the merge")
		}
	})

	t.Run("site patterns override defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{Exclude: []string{"/default/*"}},
			Sites: map[string]SiteConfig{
				"acme.test": {Exclude: []string{"/admin/*"}, Include: []string{"/team/*"}},
			},
		}

		cfg := file.GetSiteConfig("acme.test")
		if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "/admin/*" {
			t.Errorf("expected site exclude patterns, got %v", cfg.Exclude)
		}
		if len(cfg.Include) != 1 || cfg.Include[0] != "/team/*" {
			t.Errorf("expected site include patterns, got %v", cfg.Include)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{Defaults: SiteConfig{MaxPages: 25}}
		if cfg := file.GetSiteConfig("any.test"); cfg.MaxPages != 25 {
			t.Errorf("expected max pages 25, got %d", cfg.MaxPages)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.leadcrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leadcrawl")
		content := `defaults:
  max_depth: 2
  max_pages: 30
sites:
  acme.test:
    max_depth: 1
    max_workers: 2
    cookie: "session=xyz"
    headers:
      Authorization: "Bearer token"
    exclude:
      - "/blog/*"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.MaxDepth == nil || *cfg.Defaults.MaxDepth != 2 || cfg.Defaults.MaxPages != 30 {
			t.Errorf("unexpected defaults %+v", cfg.Defaults)
		}

		site, ok := cfg.Sites["acme.test"]
		if !ok {
			t.Fatal("expected acme.test in sites")
		}
		if site.MaxDepth == nil || *site.MaxDepth != 1 || site.MaxWorkers != 2 {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
		if len(site.Exclude) != 1 {
			t.Errorf("expected 1 exclude pattern, got %d", len(site.Exclude))
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leadcrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leadcrawl")
		if err := os.WriteFile(configPath, []byte("defaults:\n  max_depth: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected data dir ending in %s, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected config dir ending in %s, got %q", AppName, dir)
	}
}
