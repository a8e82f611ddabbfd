// Package cli implements the stocklens command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockLens/internal/model"
	"StockLens/internal/server"
)

var cfgPath string

var rootCMD = &cobra.Command{
	Use:   "stocklens",
	Short: "Korean stock analysis dashboard",
	Long: `StockLens resolves KRX-listed companies, fetches daily price history,
derives moving averages and simulates buy-and-hold returns. Use "serve" for
the JSON API or the other commands for one-off queries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code for the error kind.
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		code := exitCode(err)
		if code == 1 {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, server.UserMessage(err))
		}
		os.Exit(code)
	}
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCMD.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "path to config file")
	rootCMD.AddCommand(serveCMD, resolveCMD, analyzeCMD, simulateCMD)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return 2
	case errors.Is(err, model.ErrCompanyNotFound):
		return 3
	case errors.Is(err, model.ErrNoDataInRange):
		return 4
	case errors.Is(err, model.ErrProviderUnavailable):
		return 5
	default:
		return 1
	}
}
