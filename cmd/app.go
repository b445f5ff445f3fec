// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"log/slog"

	"eduautismo/cli/internal/auth"
	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/broadcast"
	"eduautismo/cli/internal/config"
	apperrors "eduautismo/cli/internal/errors"
	"eduautismo/cli/internal/forms"
	"eduautismo/cli/internal/guard"
	"eduautismo/cli/internal/keychain"
	"eduautismo/cli/internal/manifest"
	"eduautismo/cli/internal/xdg"
)

// app wires the session layer for one CLI invocation.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	manifest *manifest.Manifest
	keys     *keychain.Manager
	bus      broadcast.Broadcaster
	store    *auth.TokenStore
	svc      *auth.Service
	state    *auth.Container
	router   *guard.Router
	forms    *forms.Validator
	msgs     *apperrors.Catalog
}

// containerRef lets the router read the container built after it.
type containerRef struct{ c *auth.Container }

func (r *containerRef) State() auth.Snapshot {
	if r.c == nil {
		return auth.Snapshot{}
	}
	return r.c.State()
}

// newApp builds every component for cfg. The returned app owns the
// broadcaster and must be closed.
func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	m, err := manifest.Resolve(cfg.APIURL, cfg.Endpoints)
	if err != nil {
		return nil, err
	}

	fileDir := cfg.Storage.FileDir
	if fileDir == "" && cfg.Storage.Backend != config.StorageMemory {
		if fileDir, err = xdg.SubDir("keyring"); err != nil {
			return nil, err
		}
	}
	keys, err := keychain.Open(keychain.Options{
		Backend: cfg.Storage.Backend,
		Origin:  m.Origin(),
		FileDir: fileDir,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("credential store ready", "backend", cfg.Storage.Backend, "namespace", keys.Namespace())

	var sessionDir string
	if cfg.Broadcast.Driver == config.BroadcastFile {
		if sessionDir, err = xdg.SubDir("session"); err != nil {
			return nil, err
		}
	}
	bus, err := broadcast.Open(ctx, cfg.Broadcast, broadcast.Options{
		Namespace: keys.Namespace(),
		Dir:       sessionDir,
		Logger:    log,
	})
	if err != nil {
		// other processes just won't hear about our changes
		log.Warn("session broadcast disabled", "driver", cfg.Broadcast.Driver, "error", err)
		bus = broadcast.NewNop()
	}

	msgs := apperrors.CatalogFor(cfg.Locale)
	store := auth.NewTokenStore(keys, auth.WithPublisher(bus), auth.WithStoreLogger(log))
	api := backend.New(m, cfg.RequestTimeout.Duration, "eduautismo-cli/"+Version)

	ref := &containerRef{}
	router := guard.NewRouter(guard.New(nil, cfg.Guard.PreserveTarget), ref)
	svc := auth.NewService(api, store,
		auth.WithNavigator(router),
		auth.WithCatalog(msgs),
		auth.WithLogger(log),
	)
	ref.c = auth.NewContainer(svc)
	router.OnReset(func(path string) {
		log.Debug("navigation reset", "path", path)
	})

	return &app{
		cfg:      cfg,
		log:      log,
		manifest: m,
		keys:     keys,
		bus:      bus,
		store:    store,
		svc:      svc,
		state:    ref.c,
		router:   router,
		forms:    forms.New(cfg.Locale),
		msgs:     msgs,
	}, nil
}

// Close releases the broadcaster.
func (a *app) Close() error {
	if a == nil || a.bus == nil {
		return nil
	}
	return a.bus.Close()
}
