package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecostore/internal/config"
	"ecostore/internal/logger"
	"ecostore/internal/storefront"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is built once per invocation by the root command's PersistentPreRunE.
type app struct {
	api    *storefront.APIClient
	store  *storefront.Store
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var apiURL string
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse and manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if apiURL == "" {
				apiURL = cfg.Client.APIURL
			}

			a.logger = logger.NewWithDefaults()
			a.api = storefront.NewAPIClient(apiURL, timeout, a.logger)
			a.store = storefront.NewStore(a.api,
				storefront.WithLogger(a.logger),
				storefront.WithChangeListener(notificationPrinter(cmd)),
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.store != nil {
				a.store.Close()
			}
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "catalog API base URL (defaults to API_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")

	root.AddCommand(
		newProductsCommand(a),
		newCategoriesCommand(a),
		newCartCommand(a),
	)
	return root
}

// notificationPrinter writes each new notification to stderr once.
func notificationPrinter(cmd *cobra.Command) func(storefront.Snapshot) {
	var last *storefront.Notification
	return func(snap storefront.Snapshot) {
		n := snap.Notification
		if n == nil || (last != nil && last.ID == n.ID) {
			return
		}
		last = n
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Kind, n.Message)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		stop()
		os.Exit(1)
	}
}
