package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/leslieo2/go-user-demo/internal/config"
	"github.com/leslieo2/go-user-demo/internal/hotreload"
	"github.com/leslieo2/go-user-demo/internal/server"
)

func main() {
	// A missing .env is normal; anything else is worth failing on.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	configFile := pflag.String("config", "", "Path to configuration file (YAML or JSON)")
	cliFlags := config.RegisterFlags(pflag.CommandLine)
	pflag.Usage = printUsage
	pflag.Parse()

	loadConfig := func() (*config.Config, error) {
		return config.LoadConfig(*configFile, cliFlags)
	}

	// Load configuration with precedence (CLI > Env > File > Defaults)
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.New(cfg, server.WithConfigLoader(loadConfig))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reloader *hotreload.Manager
	if cfg.HotReload.Watches(cfg.ConfigFile) {
		reloader, err = startHotReload(ctx, cfg, srv)
		if err != nil {
			log.Fatalf("Failed to start hot reload: %v", err)
		}
		log.Printf("Hot reload enabled for %s", cfg.ConfigFile)
	}

	if cfg.Security.RateLimit.Enabled {
		log.Printf("Rate limiting enabled (strategy: %s)", cfg.Security.RateLimit.Strategy)
	}
	if cfg.App.SettleAll {
		log.Printf("Loading flag waits for all initial requests")
	}

	runErr := srv.Run(ctx)
	if reloader != nil {
		reloader.Stop()
	}
	if runErr != nil {
		log.Fatalf("Server stopped with error: %v", runErr)
	}
}

func startHotReload(ctx context.Context, cfg *config.Config, srv *server.Server) (*hotreload.Manager, error) {
	m, err := hotreload.NewManager(srv.Logger().Named("hotreload"))
	if err != nil {
		return nil, err
	}
	m.SetDebounceTime(cfg.HotReload.Debounce)

	if err := m.AddWatch(cfg.ConfigFile); err != nil {
		m.Stop()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	if err := m.RegisterReloadable(srv); err != nil {
		m.Stop()
		return nil, fmt.Errorf("failed to register server for hot reload: %w", err)
	}
	if err := m.Start(ctx); err != nil {
		m.Stop()
		return nil, err
	}
	return m, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Serves a user list view backed by a mock user API.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment variables (also read from .env):\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_HOST, USER_DEMO_PORT, USER_DEMO_METRICS_PORT\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_READ_TIMEOUT, USER_DEMO_WRITE_TIMEOUT, USER_DEMO_IDLE_TIMEOUT\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_MAX_REQUEST_SIZE, USER_DEMO_SHUTDOWN_TIMEOUT\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_TITLE, USER_DEMO_SEED, USER_DEMO_SETTLE_ALL\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_LOG_LEVEL, USER_DEMO_LOG_FORMAT\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_HOT_RELOAD, USER_DEMO_HOT_RELOAD_DEBOUNCE\n")
	fmt.Fprintf(os.Stderr, "  USER_DEMO_TLS_ENABLED, USER_DEMO_TLS_CERT_FILE, USER_DEMO_TLS_KEY_FILE\n")
	fmt.Fprintf(os.Stderr, "\nPrecedence: flags > environment > config file > defaults\n")
	fmt.Fprintf(os.Stderr, "\nExample usage:\n")
	fmt.Fprintf(os.Stderr, "  %s --config ./user-demo.yaml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --port 8081 --metrics-port 9091 --seed 42\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  USER_DEMO_TITLE=\"Team Directory\" %s --settle-all\n", os.Args[0])
}
