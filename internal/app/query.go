package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/config"
	"github.com/hitoshi/livsmedel/internal/database"
	"github.com/hitoshi/livsmedel/internal/logger"
	"github.com/hitoshi/livsmedel/internal/model"
	"github.com/hitoshi/livsmedel/internal/output"
	"github.com/hitoshi/livsmedel/internal/repository"
)

// initOneShot はワンショットコマンド用に設定を読み込み、ログをエラー出力に向ける。
func initOneShot(cmd *cobra.Command, opts *globalOptions) (*config.Config, *slog.Logger, *output.Printer, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialization failed: %w", err)
	}
	log := logger.SetupDefault(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel))
	printer := output.NewPrinter(cmd.OutOrStdout(), output.ResolveColors(opts.noColor))
	return cfg, log, printer, nil
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list [search text]",
		Short: "Print one page of food items",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, printer, err := initOneShot(cmd, opts)
			if err != nil {
				return err
			}
			client, err := newCatalogClient(cfg, log, nil)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), client, printer, listQuery(cfg, strings.Join(args, " "), page))
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")

	return cmd
}

// listQuery は1始まりのページ番号から一覧クエリを組み立てる。1未満のページは先頭ページとして扱う。
func listQuery(cfg *config.Config, search string, page int) model.Query {
	if page < 1 {
		page = 1
	}
	return model.Query{
		Offset:   (page - 1) * cfg.PageSize,
		Limit:    cfg.PageSize,
		Language: cfg.Language,
		Search:   strings.TrimSpace(search),
	}
}

func runList(ctx context.Context, client browse.PageFetcher, printer *output.Printer, q model.Query) error {
	result, err := client.ListItems(ctx, q)
	if err != nil {
		apiErr := model.NewListFetchFailedError(q.Language)
		printer.Error("%s", apiErr.Message)
		return apiErr
	}
	return printer.List(result, q.Language)
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <nummer>",
		Short: "Print the nutrient values of one food item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nummer, err := strconv.Atoi(args[0])
			if err != nil || nummer <= 0 {
				return model.NewInvalidRequestError(fmt.Sprintf("invalid food number: %q", args[0]))
			}

			cfg, log, printer, err := initOneShot(cmd, opts)
			if err != nil {
				return err
			}
			client, err := newCatalogClient(cfg, log, nil)
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), client, printer, nummer, cfg.Language)
		},
	}
}

func runShow(ctx context.Context, client browse.DetailFetcher, printer *output.Printer, nummer int, lang model.Language) error {
	item, err := client.GetItem(ctx, nummer, lang)
	if err != nil {
		apiErr := model.NewDetailFetchFailedError(lang, "#"+strconv.Itoa(nummer))
		printer.Error("%s", apiErr.Message)
		return apiErr
	}

	nutrients, err := client.GetNutrients(ctx, nummer, lang)
	if err != nil {
		apiErr := model.NewDetailFetchFailedError(lang, item.DisplayName())
		printer.Error("%s", apiErr.Message)
		return apiErr
	}

	return printer.Detail(item, nutrients, lang)
}

func newTopCommand(opts *globalOptions) *cobra.Command {
	var (
		days  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the most frequent searches from the search log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, printer, err := initOneShot(cmd, opts)
			if err != nil {
				return err
			}
			if err := requireDatabase(cfg, "top"); err != nil {
				return err
			}

			db, err := database.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			since := time.Now().AddDate(0, 0, -days)
			return runTop(cmd.Context(), repository.NewPostgresSearchEventRepo(db), printer, since, limit, cfg.Language)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "look back this many days")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of searches to print")

	return cmd
}

func runTop(ctx context.Context, repo repository.SearchEventRepository, printer *output.Printer, since time.Time, limit int, lang model.Language) error {
	counts, err := repo.TopSearches(ctx, since, limit)
	if err != nil {
		return fmt.Errorf("failed to query search log: %w", err)
	}
	return printer.TopSearches(counts, lang)
}
