package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aitool-hub/internal/app"
	"aitool-hub/internal/config"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/service/discovery"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	pretty   bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "aitool-hub",
		Short:        "AI tool directory: discovery, enrichment and admin API",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&flags.pretty, "pretty", false, "human readable console logs")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override HUB_LOG_LEVEL")

	root.AddCommand(
		newServeCmd(flags),
		newDiscoverCmd(flags),
		newEnrichCmd(flags),
		newResolveVideoCmd(flags),
		newImportGitHubCmd(flags),
	)
	return root
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with periodic discovery refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(_ context.Context, a *app.App) error {
				return a.Run()
			})
		},
	}
}

func newDiscoverCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "discover <trending|latest|tutorials>",
		Short: "Fetch one discovery list through the fallback chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseListKind(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if kind == domain.ListTutorials {
					res, err := a.Discovery.FetchVideos(ctx)
					if err != nil {
						return err
					}
					reportAttempts(cmd.ErrOrStderr(), res.Tier, len(res.Items), res.Attempts)
					return printJSON(cmd.OutOrStdout(), res.Items)
				}
				res, err := a.Discovery.FetchTools(ctx, kind)
				if err != nil {
					return err
				}
				reportAttempts(cmd.ErrOrStderr(), res.Tier, len(res.Items), res.Attempts)
				return printJSON(cmd.OutOrStdout(), res.Items)
			})
		},
	}
}

func newEnrichCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich [tool-id]",
		Short: "Fill missing tool fields with the generative model (all tools when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if !a.Enricher.Enabled() {
					fmt.Fprintln(cmd.ErrOrStderr(), "⚠️ GEMINI_API_KEY is not set, nothing to do")
				}
				if len(args) == 1 {
					tool, changed, err := a.Enricher.EnrichAndStore(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "changed: %v\n", changed)
					return printJSON(cmd.OutOrStdout(), tool)
				}
				report, err := a.Enricher.EnrichMissing(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newResolveVideoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-video <query>",
		Short: "Look up an 11-character platform video id for a search query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				id, err := a.Resolver.ResolveID(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func newImportGitHubCmd(flags *rootFlags) *cobra.Command {
	var maxDaysOld int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import-github <topic>",
		Short: "Import recently created GitHub repositories for a topic into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				days := maxDaysOld
				if days < 0 {
					days = a.Config().ImportMaxDaysOld
				}
				tools, err := a.Importer.SearchTools(ctx, args[0], days)
				if err != nil {
					return err
				}
				if dryRun {
					return printJSON(cmd.OutOrStdout(), tools)
				}
				added := a.Catalog.ImportTools(ctx, tools)
				fmt.Fprintf(cmd.OutOrStdout(), "found %d, added %d\n", len(tools), added)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxDaysOld, "max-days", -1, "only repositories created within N days (0 = no limit, default HUB_IMPORT_MAX_DAYS_OLD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the tools without importing them")
	return cmd
}

// withApp 加载配置、日志和组件，命令结束后释放连接
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	loggerClient := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog || flags.pretty,
		File:   cfg.LogFile,
	})
	defer func() { _ = loggerClient.Sync() }()
	loggerClient.Debug("config loaded", logger.String("config", fmt.Sprintf("%+v", cfg.Redacted())))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, loggerClient, version)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// reportAttempts 把产出层级和各层失败原因写到 stderr，stdout 只输出数据
func reportAttempts(w io.Writer, tier domain.Tier, n int, attempts []discovery.TierAttempt) {
	for _, at := range attempts {
		fmt.Fprintf(w, "  %-10s %v\n", at.Tier, at.Err)
	}
	fmt.Fprintf(w, "tier: %s (%d items)\n", tier, n)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
