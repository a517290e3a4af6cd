package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/prohmpiriya/experience-marketplace/migrations"
	"github.com/prohmpiriya/experience-marketplace/pkg/config"
	"github.com/prohmpiriya/experience-marketplace/pkg/database"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the marketplace database schema",
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load instead of ./.env")

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Up(ctx, db.Pool())
			for _, version := range applied {
				fmt.Printf("applied %s\n", version)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("schema is up to date")
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			states, err := migrations.Status(ctx, db.Pool())
			if err != nil {
				return err
			}
			for _, s := range states {
				if s.Applied() {
					fmt.Printf("%-32s applied %s\n", s.Version, s.AppliedAt.Format(time.RFC3339))
				} else {
					fmt.Printf("%-32s pending\n", s.Version)
				}
			}
			return nil
		},
	}
}

func connect(ctx context.Context) (*database.PostgresDB, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadWithPath(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewPostgres(ctx, database.NewPostgresConfig(cfg.Database, false))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
