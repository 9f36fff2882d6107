package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"promoshow/config"
	"promoshow/database"
	"promoshow/firebase"
	"promoshow/media"
	"promoshow/platform"
	"promoshow/promotions"
	"promoshow/session"
	"promoshow/viewer"
)

// app holds the wired components shared by the server and the CLI commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	docs    firebase.DocumentStore
	blobs   firebase.BlobStore
	repo    *promotions.Repository
	cache   *media.HTTPCache
	host    *platform.DirHost
	viewers *viewer.Registry

	// screen and feed drive the CLI's own carousel.
	screen *viewer.Screen
	feed   *media.Feed

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	fbApp, err := firebase.NewApp(ctx, firebase.AppConfig{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
		Credentials:   cfg.Credentials,
	}, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.DocumentStore {
	case config.StorePostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		a.docs = database.NewDocumentStore(db)
		logger.Info("using postgres document store")
	default:
		fs, err := firebase.NewFirestoreStore(ctx, fbApp)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, fs.Close)
		a.docs = fs
		logger.Info("using firestore document store")
	}

	blobs, err := firebase.NewStorageBlobStore(ctx, fbApp, cfg.StorageBucket, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.blobs = blobs

	caps, err := platform.ForName(cfg.Platform, a.hostFor(), cfg.DownloadName)
	if err != nil {
		a.close()
		return nil, err
	}

	a.repo = promotions.NewRepository(a.docs, a.blobs, cfg.PromotionsCollection, cfg.StoragePrefix, logger)
	a.cache = media.NewHTTPCache(cfg.CacheDir, cfg.FetchTimeout, logger)
	opts := media.Options{
		ShareMessage: cfg.ShareMessage,
		DialogTitle:  cfg.ShareTitle,
		AlbumName:    cfg.AlbumName,
		FilePrefix:   cfg.FilePrefix,
	}
	newSeat := func() *viewer.Seat {
		feed := media.NewFeed(50, media.LogNotifier{Logger: logger})
		dispatcher := media.NewDispatcher(caps, a.cache, feed, opts, logger)
		return &viewer.Seat{Screen: viewer.NewScreen(a.repo, dispatcher, feed, logger), Feed: feed}
	}
	a.viewers = viewer.NewRegistry(newSeat, cfg.ViewerIdle, logger)

	cli := newSeat()
	a.screen, a.feed = cli.Screen, cli.Feed

	logger.Info("app ready",
		zap.String("platform", string(caps.Platform)),
		zap.String("collection", cfg.PromotionsCollection),
		zap.String("export_dir", cfg.ExportDir))
	return a, nil
}

func (a *app) hostFor() *platform.DirHost {
	if a.host == nil {
		a.host = platform.NewDirHost(a.cfg.ExportDir, a.logger)
	}
	return a.host
}

func (a *app) session() *session.Session {
	return session.New(a.docs, session.FileCache{Path: a.cfg.SessionCache}, a.cfg.UsersCollection, a.logger)
}

func (a *app) close() {
	if a.viewers != nil {
		a.viewers.Close()
	}
	if a.screen != nil {
		a.screen.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
