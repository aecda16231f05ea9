package cli

import (
	"net/http"

	"github.com/rs/zerolog"

	"pkgrun/internal/cache"
	"pkgrun/internal/config"
	"pkgrun/internal/launcher"
	"pkgrun/internal/logx"
	"pkgrun/internal/orchestrator"
	"pkgrun/internal/paths"
	"pkgrun/internal/registry"
)

// app holds the wired collaborators for one CLI invocation. The http.Client
// is built once here and shared by every registry call.
type app struct {
	Config       config.Config
	CacheRoot    string
	Cache        *cache.FS
	Registry     *registry.HTTPClient
	Orchestrator *orchestrator.Orchestrator
	Log          zerolog.Logger
}

func newApp() (*app, error) {
	logger := logx.New(flagVerbose)

	configPath, err := paths.ConfigFile()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	root, err := paths.CacheRoot(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("cache_root", root).Str("registry", cfg.Registry.URL).Msg("resolved configuration")

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	inspector := &cache.FS{Root: root, Log: &logger}
	client := registry.NewHTTPClient(cfg.Registry.URL, root, httpClient, &logger)
	runner := launcher.CmdRunner{Fallback: cfg.Installer, Log: &logger}

	return &app{
		Config:       cfg,
		CacheRoot:    root,
		Cache:        inspector,
		Registry:     client,
		Orchestrator: orchestrator.New(inspector, client, runner, &logger),
		Log:          logger,
	}, nil
}
