package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/MattyO101/Legalassist-MPV/internal/bootstrap"
	"github.com/MattyO101/Legalassist-MPV/internal/services/health"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/config"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/db"
	"github.com/MattyO101/Legalassist-MPV/internal/templates"
)

var errUnhealthy = errors.New("one or more services are down")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "legalctl",
		Short:         "Operator tasks for LegalAssist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newHealthcheckCmd())
	return root
}

func openDatastore(ctx context.Context) (*bootstrap.Datastore, error) {
	cfg, err := config.Load("legalctl", "")
	if err != nil {
		return nil, err
	}
	return bootstrap.OpenDatastore(ctx, cfg, db.CLIPool().FromEnv())
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres migrations or create Mongo indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := openDatastore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()
			if err := ds.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate %s: %w", ds.Kind(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s datastore\n", ds.Kind())
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in template catalogue when it is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := openDatastore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()
			svc := &templates.Service{Templates: ds.Templates(), UserTemplates: ds.UserTemplates()}
			n, err := svc.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d templates into %s datastore\n", n, ds.Kind())
			return nil
		},
	}
}

func newHealthcheckCmd() *cobra.Command {
	var (
		authURL     string
		documentURL string
		templateURL string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health on every service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results := health.CheckAll(cmd.Context(), &http.Client{Timeout: timeout}, []health.Target{
				{Name: "auth-service", BaseURL: authURL},
				{Name: "document-service", BaseURL: documentURL},
				{Name: "template-service", BaseURL: templateURL},
			})
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			if !health.AllHealthy(results) {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&authURL, "auth-url", "http://localhost:9000", "auth service base URL")
	cmd.Flags().StringVar(&documentURL, "document-url", "http://localhost:9001", "document service base URL")
	cmd.Flags().StringVar(&templateURL, "template-url", "http://localhost:9002", "template service base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	return cmd
}
