package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"memoryd/internal/persona"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP API",
		Example: "  memoryd serve --addr :8080 --model qwen2.5-3b-instruct-q4_k_m.gguf",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	defAddr := os.Getenv("MEMORYD_ADDR")
	cmd.Flags().StringVar(&opts.addr, "addr", defAddr, "HTTP listen address, e.g. :8080 (defaults MEMORYD_ADDR)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model to load at startup (file name in models dir or path)")
	cmd.Flags().StringVar(&opts.runtime, "runtime", "llama", "Model runtime: llama|scripted")
	cmd.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma separated origins; enables CORS when set")
	return cmd
}

func newIndexCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed every stored message once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				n, err := a.svc.IndexAllMessages(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d messages\n", n)
				return nil
			})
		},
	}
}

func newPersonaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "persona",
		Short: "Analyze the user's messages, store and print the persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				p, err := a.svc.AnalyzePersona(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Summary string `json:"summary"`
					Persona any    `json:"persona"`
				}{persona.Summary(p), p})
			})
		},
	}
}

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List *.gguf files in the models directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				models, err := a.svc.ListModels()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSIZE\tPATH")
				for _, m := range models {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", m.ID, m.SizeBytes, m.Path)
				}
				return tw.Flush()
			})
		},
	}
}

// withApp builds the application without the HTTP server, runs fn and
// releases everything.
func withApp(ctx context.Context, opts *options, fn func(context.Context, *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, opts.logFormat)
	a, err := buildApp(ctx, cfg, opts.runtime, &log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
