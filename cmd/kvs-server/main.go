// Command kvs-server is the process entrypoint for the key-value store
// server: it wires configuration, logging, the chosen storage engine and
// worker pool, then binds and serves until the process is killed.
package main

import (
	"log"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/devraj-nair/kvcask/internal/config"
	"github.com/devraj-nair/kvcask/internal/engine"
	"github.com/devraj-nair/kvcask/internal/kverrors"
	"github.com/devraj-nair/kvcask/internal/logfile"
	"github.com/devraj-nair/kvcask/internal/pool"
	"github.com/devraj-nair/kvcask/internal/server"
)

func main() {
	slogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(slogHandler))

	var addr, engineFlag, configPath string
	flag.StringVar(&addr, "addr", "", "listen address (default from config, else 127.0.0.1:4000)")
	flag.StringVar(&engineFlag, "engine", "", "storage engine: kvs or sled (default: on-disk marker, else kvs)")
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.Parse()

	slog.Info("kvs-server: loading configuration")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("kvs-server: failed to load configuration", "error", err)
		log.Fatalf("failed to load config: %v", err)
	}
	if addr == "" {
		addr = cfg.ADDR
	}

	if err := os.MkdirAll(cfg.DATA_DIR, 0o755); err != nil {
		slog.Error("kvs-server: failed to create data directory", "dir", cfg.DATA_DIR, "error", err)
		log.Fatalf("failed to create data directory: %v", err)
	}

	resolvedEngine, err := logfile.CheckMarker(cfg.DATA_DIR, engineFlag)
	if err != nil {
		slog.Error("kvs-server: engine selection conflicts with on-disk marker", "requested", engineFlag, "error", err)
		log.Fatalf("invalid engine: %v", err)
	}

	eng, err := openEngine(resolvedEngine, cfg)
	if err != nil {
		slog.Error("kvs-server: failed to open storage engine", "engine", resolvedEngine, "error", err)
		log.Fatalf("failed to open engine: %v", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Error("kvs-server: error closing engine", "error", err)
		}
	}()

	p, err := newPool(cfg.POOL_KIND, int(cfg.POOL_SIZE))
	if err != nil {
		slog.Error("kvs-server: failed to build worker pool", "kind", cfg.POOL_KIND, "error", err)
		log.Fatalf("failed to build pool: %v", err)
	}

	srv := server.New(eng, p)
	slog.Info("kvs-server: starting",
		"addr", addr,
		"engine", resolvedEngine,
		"pool_kind", cfg.POOL_KIND,
		"pool_size", cfg.POOL_SIZE,
		"data_dir", cfg.DATA_DIR,
	)
	if err := srv.Start(addr); err != nil {
		slog.Error("kvs-server: server stopped", "error", err)
		log.Fatalf("server error: %v", err)
	}
}

// openEngine selects the backend named by resolvedEngine. "sled" is
// documented by internal/engine.SledEngine as a seam in the Engine
// contract only; it is not a working alternate backend, so selecting it
// fails loudly rather than silently losing data.
func openEngine(resolvedEngine string, cfg *config.Config) (engine.Engine, error) {
	switch resolvedEngine {
	case "kvs":
		return engine.Open(cfg.DATA_DIR, int64(cfg.COMPACTION_THRESHOLD))
	case "sled":
		return nil, kverrors.New(kverrors.InvalidEngine, "sled engine is a documented contract stub, not a usable backend")
	default:
		return nil, kverrors.New(kverrors.InvalidEngine, "unknown engine "+resolvedEngine)
	}
}

// newPool selects one of the three interchangeable Pool implementations
// by name; an unrecognized kind falls back to the shared-queue pool,
// the one with real panic-resilience design content.
func newPool(kind string, size int) (pool.Pool, error) {
	if size < 1 {
		size = 4
	}
	switch kind {
	case "naive":
		return pool.NewNaivePool(size)
	case "ants":
		return pool.NewAntsPool(size)
	default:
		return pool.NewSharedQueuePool(size)
	}
}
