package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/riskscope/internal/application/analysis"
	"github.com/bryanwahyu/riskscope/internal/bootstrap"
	"github.com/bryanwahyu/riskscope/internal/config"
	"github.com/bryanwahyu/riskscope/internal/presentation"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "riskctl - project risk analysis from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "Path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(analyzeCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))

	return rootCmd
}

// openSession loads config and wires a session rendering to out.
func openSession(ctx context.Context, opts *rootOptions, out io.Writer) (*appanalysis.Session, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config invalid: %w", err)
	}
	session, store, err := bootstrap.NewSession(ctx, cfg, presentation.NewTerminal(out))
	if err != nil {
		return nil, nil, err
	}
	return session, func() { store.Close() }, nil
}
