package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/batchfile"
	"delivery-dispatch-service/internal/adapters/events"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/storage"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dispatch",
		Short:         "Runs delivery batch matching from the command line",
		Long:          `dispatch matches a batch of timed orders to a fresh pool of drivers, always picking the earliest available driver, and prints one line per customer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

type runOptions struct {
	drivers int
	orders  string
	store   string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match the orders in a JSON file against N drivers",
		Example: `  dispatch run --drivers 2 --orders orders.json
  dispatch run --orders batch.json --store sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.drivers, "drivers", 0, "number of drivers (defaults to number_of_drivers in the file)")
	cmd.Flags().StringVar(&opts.orders, "orders", "", "path to a JSON batch file")
	cmd.Flags().StringVar(&opts.store, "store", config.BackendMemory, "store backend: memory, sqlite, postgres or redis")
	_ = cmd.MarkFlagRequired("orders")

	return cmd
}

func runBatch(ctx context.Context, out io.Writer, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := batchfile.LoadFile(opts.orders)
	if err != nil {
		return err
	}

	drivers := opts.drivers
	if drivers == 0 {
		drivers = batch.Drivers
	}
	if drivers == 0 {
		return errors.New("run: --drivers is required when the batch file has no number_of_drivers")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Store.Backend = opts.store

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	dispatcher := services.NewDispatcher(stores.Drivers, stores.Assignments, events.LogPublisher{})

	result, err := dispatcher.ProcessBatch(ctx, services.BatchRequest{DriverCount: drivers, Orders: batch.Orders})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	for _, o := range result.Outcomes {
		if _, err := fmt.Fprintln(out, o.Message()); err != nil {
			return err
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
