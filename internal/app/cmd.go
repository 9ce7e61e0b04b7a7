package app

import (
	"io"

	"github.com/spf13/cobra"
)

// globalOptions は全サブコマンド共通のフラグ。
type globalOptions struct {
	envFile  string
	language string
	noColor  bool
}

// NewRootCommand はルートコマンドとすべてのサブコマンドを組み立てる。
// サブコマンドを指定しない場合はserveとして起動する。
func NewRootCommand(w io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "livsmedel",
		Short: "Browser for the Livsmedelsverket food composition database",
		Long: `livsmedel browses the Livsmedelsverket food composition catalog.

Example usage:
  livsmedel browse             # Interactive terminal UI
  livsmedel list mjölk         # Print one page of search results
  livsmedel show 1             # Print the nutrient values of one food item
  livsmedel serve              # Run the headless HTTP driver
  livsmedel worker             # Run the search log retention job`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), w, opts)
		},
	}
	root.SetOut(w)

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file to load (default: .env if present)")
	root.PersistentFlags().StringVar(&opts.language, "lang", "", "catalog language: sv or en (overrides LANGUAGE)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newServeCommand(w, opts),
		newWorkerCommand(w, opts),
		newBrowseCommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
		newTopCommand(opts),
		newMigrateCommand(w, opts),
		newHealthcheckCommand(),
	)

	return root
}

func newServeCommand(w io.Writer, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the headless HTTP driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), w, opts)
		},
	}
}

func newWorkerCommand(w io.Writer, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the search log retention cleanup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), w, opts)
		},
	}
}

func newBrowseCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in an interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), opts)
		},
	}
}

// newHealthcheckCommand はdistroless環境でのDockerヘルスチェック用サブコマンド。
// 設定の読み込みを行わず、SERVER_PORTのみを参照する。
func newHealthcheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check the /health endpoint of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealthcheck(cmd.Context(), healthcheckPort())
		},
	}
}
