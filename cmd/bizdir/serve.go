package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/api"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long: `Serves the business directory API:

  GET    /api/       list every business (or one page with ?limit= and ?cursor=)
  POST   /api/       create a business from {"name": ..., "status": ...}
  DELETE /api/:id    delete a business
  GET    /healthz    liveness probe
  GET    /metrics    Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := bizdir.NewClient(ctx, a.cfg.DynamoDB())
	if err != nil {
		return err
	}

	table := a.cfg.Table()
	store := bizdir.NewStore(db, table,
		bizdir.WithValidation(a.cfg.Validation),
		bizdir.WithLogger(a.logger),
	)

	router := api.NewRouter(store, api.Options{
		Logger:       a.logger,
		AllowOrigins: a.cfg.Server.AllowOrigins,
		Registerer:   prometheus.DefaultRegisterer,
		Gatherer:     prometheus.DefaultGatherer,
	})

	a.logger.Info("starting server",
		zap.String("addr", a.cfg.Addr()),
		zap.String("table", table.TableName),
		zap.String("counterTable", table.CounterTableName),
	)

	srv := api.NewServer(a.cfg.Addr(), router, a.logger, a.cfg.GetShutdownTimeout())
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

func (a *app) tablesCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Create the businesses and counter tables",
		Long: `Creates the businesses table and the id counter table with on-demand billing,
then waits until both are active. Tables that already exist are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := bizdir.NewClient(ctx, a.cfg.DynamoDB())
			if err != nil {
				return err
			}

			table := a.cfg.Table()
			if err := table.CreateTables(ctx, db, wait); err != nil {
				return err
			}

			a.logger.Info("tables ready",
				zap.String("table", table.TableName),
				zap.String("counterTable", table.CounterTableName),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Tables %s and %s are ready\n", table.TableName, table.CounterTableName)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 2*time.Minute, "How long to wait for the tables to become active")
	return cmd
}
