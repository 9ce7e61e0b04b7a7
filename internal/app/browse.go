package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/logger"
	"github.com/hitoshi/livsmedel/internal/tui"
)

// runBrowse は端末UIで1つの閲覧セッションを操作する。
// 端末を汚さないよう、ログはLOG_FILEに書き込む。
func runBrowse(ctx context.Context, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log := logger.SetupDefault(logFile, logger.ParseLevel(cfg.LogLevel))

	client, err := newCatalogClient(cfg, log, nil)
	if err != nil {
		return err
	}

	sl, err := openSearchLog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sl.close()

	session := browse.NewSession(uuid.New().String(), browse.SessionDeps{
		Catalog:  client,
		Logger:   log,
		Listener: sl.listener(),
	}, sessionConfig(cfg))
	defer session.Close()

	log.Info("starting browse session",
		slog.String("session_id", session.ID()),
		slog.String("language", cfg.Language.String()),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if sl != nil {
		g.Go(func() error {
			sl.writer.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		// 画面を閉じたら検索ログの書き込みも止める
		defer cancel()
		session.Start()
		return tui.Run(gctx, session)
	})

	return g.Wait()
}
