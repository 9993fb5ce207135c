package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/txtshelf/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":3000" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestDataConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Path = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty data path should fail")
	}
	if !strings.HasPrefix(err.Error(), "data:") {
		t.Errorf("error not attributed to data section: %v", err)
	}
}

func TestIndexConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Index.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty index path should fail")
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := EventsConfig{ListThrottle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail")
	}
}

func TestConfig_LoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("TXTSHELF_DATA", "/srv/shelf")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `app:
  log_level: debug
  http:
    port: 8081
data:
  path: ${TXTSHELF_DATA}
events:
  list_throttle: 500ms
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Port != 8081 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Data.Path != "/srv/shelf" {
		t.Errorf("data path = %q", cfg.Data.Path)
	}
	if !cfg.Data.Create {
		t.Error("data.create default lost")
	}
	if cfg.Events.ListThrottle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.ListThrottle)
	}
	if cfg.Index.Path != "./txtshelf.db" {
		t.Errorf("index path default lost: %q", cfg.Index.Path)
	}
}
