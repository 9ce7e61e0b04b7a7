// Package app はコマンドラインの各サブコマンドから依存関係を組み立てて起動する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/catalog"
	"github.com/hitoshi/livsmedel/internal/config"
	"github.com/hitoshi/livsmedel/internal/database"
	"github.com/hitoshi/livsmedel/internal/logger"
	"github.com/hitoshi/livsmedel/internal/model"
	"github.com/hitoshi/livsmedel/internal/repository"
	"github.com/hitoshi/livsmedel/internal/security"
	"github.com/hitoshi/livsmedel/internal/worker/searchlog"
)

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMを受信するとコマンドのコンテキストがキャンセルされる。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Init は設定を読み込み、JSON構造化ログをwに出力するグローバルロガーとしてセットアップする。
// ログレベルはLOG_LEVELに従う。
func Init(w io.Writer, opts *globalOptions) (*config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// loadConfig は.envファイルと環境変数から設定を読み込み、フラグの値で上書きする。
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if err := loadEnvFile(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.language != "" {
		lang, err := model.ParseLanguage(opts.language)
		if err != nil {
			return nil, fmt.Errorf("invalid --lang: %w", err)
		}
		cfg.Language = lang
	}

	return cfg, nil
}

// loadEnvFile は.envファイルを読み込む。既に設定済みの環境変数は上書きしない。
// pathが空の場合はカレントディレクトリの.envを任意で読み込む。
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// newCatalogClient はカタログクライアントを生成する。
// 公開ホストにはsafeurlのクライアントを使い、レート制限と表示用テキストのサニタイズを設定する。
func newCatalogClient(cfg *config.Config, log *slog.Logger, recorder catalog.Recorder) (*catalog.Client, error) {
	httpClient, guarded, err := security.NewCatalogClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog http client: %w", err)
	}
	if !guarded {
		log.Warn("catalog base url is not a public host, SSRF guard disabled",
			slog.String("base_url", cfg.CatalogBaseURL),
		)
	}

	var limiter *rate.Limiter
	if cfg.CatalogRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CatalogRateLimit), cfg.CatalogBurst)
	}

	return catalog.NewClient(httpClient, log, catalog.Config{
		BaseURL:     cfg.CatalogBaseURL,
		MaxBodySize: cfg.CatalogMaxSize,
		Limiter:     limiter,
		Recorder:    recorder,
		Sanitizer:   security.NewTextSanitizer(),
	}), nil
}

// sessionConfig は設定から閲覧セッションの設定を組み立てる。
func sessionConfig(cfg *config.Config) browse.SessionConfig {
	return browse.SessionConfig{
		PageSize:         cfg.PageSize,
		Language:         cfg.Language,
		DebounceInterval: cfg.SearchDebounce,
		RequestTimeout:   cfg.CatalogTimeout,
		Detail: browse.DetailConfig{
			FetchItem:  cfg.DetailFetchItem,
			Transition: cfg.DetailTransition,
		},
	}
}

// searchLog は検索ログのDB接続と書き込みワーカー。DATABASE_URL未設定時はnil。
type searchLog struct {
	db     *sql.DB
	writer *searchlog.Writer
}

// openSearchLog はDATABASE_URLが設定されている場合にDBへ接続し、書き込みワーカーを生成する。
func openSearchLog(ctx context.Context, cfg *config.Config, log *slog.Logger) (*searchLog, error) {
	if !cfg.SearchLogEnabled() {
		return nil, nil
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	log.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	repo := repository.NewPostgresSearchEventRepo(db)
	return &searchLog{
		db:     db,
		writer: searchlog.NewWriter(repo, log, searchlog.DefaultBufferSize),
	}, nil
}

// listener はセッションに渡す通知先を返す。nilレシーバーでも呼び出せる。
func (s *searchLog) listener() browse.SearchListener {
	if s == nil {
		return nil
	}
	return s.writer
}

func (s *searchLog) close() {
	if s == nil {
		return
	}
	s.db.Close()
}

// requireDatabase はDATABASE_URLが必要なコマンドで未設定の場合にエラーを返す。
func requireDatabase(cfg *config.Config, command string) error {
	if !cfg.SearchLogEnabled() {
		return fmt.Errorf("%s requires DATABASE_URL", command)
	}
	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
