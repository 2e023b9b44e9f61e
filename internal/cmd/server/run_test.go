package serverrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/flake/internal/config"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
)

func TestGetenvDefault(t *testing.T) {
	t.Setenv("FLAKE_TEST_VAR", "env_value")
	if got := getenvDefault("FLAKE_TEST_VAR", "default"); got != "env_value" {
		t.Fatalf("got %q", got)
	}
	_ = os.Unsetenv("FLAKE_TEST_VAR_NOT_SET")
	if got := getenvDefault("FLAKE_TEST_VAR_NOT_SET", "default"); got != "default" {
		t.Fatalf("got %q", got)
	}
}

func TestDataDirFallback(t *testing.T) {
	opts := Options{DataDir: ""}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.DataDir == "" {
		t.Fatal("DataDir should be set after fallback")
	}

	opts = Options{DataDir: "/custom/data"}
	if filepath.Join(opts.DataDir, "store") != "/custom/data/store" {
		t.Fatalf("store dir: %s", filepath.Join(opts.DataDir, "store"))
	}
}

// TestRunIntegration verifies Run starts and shuts down cleanly. Minimal by
// design since it binds real sockets.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	opts := Options{
		DataDir:       t.TempDir(),
		GRPCAddr:      ":0",
		HTTPAddr:      ":0",
		Fsync:         pebblestore.FsyncModeNever,
		FsyncInterval: 1 * time.Millisecond,
		Config:        cfgpkg.Default(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := Run(ctx, opts); err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
