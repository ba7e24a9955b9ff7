package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ytfinder/internal/app"
)

type rootOptions struct {
	configPath string
	transport  string
	httpAddr   string
	logger     *zap.Logger
}

func main() {
	opts := rootOptions{
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "ytfinder",
		Short: "MCP server exposing channel-video lookup tools over a cached index",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Stdio transport owns stdout, so logs go to stderr only.
			cfg := zap.NewProductionConfig()
			cfg.OutputPaths = []string{"stderr"}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, v, err := app.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd.Flags(), cfg, &opts)

			application, err := app.NewApplication(cfg, v, opts.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}
	root.SilenceUsage = true

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	root.Flags().StringVar(&opts.transport, "transport", "", "MCP transport (stdio or streamable-http)")
	root.Flags().StringVar(&opts.httpAddr, "http-addr", "", "listen address for the streamable-http transport")

	root.AddCommand(newConfigCommand(&opts))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *app.Config, opts *rootOptions) {
	if flags.Changed("transport") {
		cfg.Server.Transport = opts.transport
	}
	if flags.Changed("http-addr") {
		cfg.Server.HTTPAddr = opts.httpAddr
	}
}

// newConfigCommand prints the effective configuration after defaults, file
// and environment are merged, with the debug token masked.
func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Observability.DebugToken != "" {
				cfg.Observability.DebugToken = "***"
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}
