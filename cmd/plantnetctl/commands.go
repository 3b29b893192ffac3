package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/plantnet/plantnet-api/internal/app/api"
	statsmapper "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/http/mapper"
	userdomain "github.com/plantnet/plantnet-api/internal/domains/users/domain"
	platformobservability "github.com/plantnet/plantnet-api/internal/platform/observability"
)

const commandTimeout = time.Minute

// openStorage connects the configured driver and refuses the in-memory
// fallback, which would make every command a no-op.
func openStorage(ctx context.Context) (api.Config, *api.Storage, error) {
	cfg, err := api.LoadConfig()
	if err != nil {
		return api.Config{}, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	storage := api.OpenStorage(ctx, cfg, logger)
	if storage.Driver != cfg.StorageDriver {
		storage.Close()
		return api.Config{}, nil, fmt.Errorf("%s storage unavailable", cfg.StorageDriver)
	}
	if storage.Driver == api.DriverMemory {
		storage.Close()
		return api.Config{}, nil, fmt.Errorf("set POSTGRES_DSN or MONGODB_URI to manage persistent storage")
	}
	return cfg, storage, nil
}

// plantnetctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, constraints and indexes for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		// Opening storage applies the schema for both postgres and mongo.
		_, storage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer storage.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", storage.Driver)
		return nil
	},
}

// plantnetctl set-role <email> <role>
var setRoleCmd = &cobra.Command{
	Use:   "set-role <email> <role>",
	Short: "Assign a role directly, e.g. to bootstrap the first admin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := userdomain.ParseRole(args[1])
		if err != nil {
			return err
		}
		email := userdomain.NormalizeEmail(args[0])
		if err := userdomain.ValidateEmail(email); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		_, storage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer storage.Close()

		user, err := storage.Users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("set role for %s: %w", email, err)
		}
		user.AssignRole(role)
		user, err = storage.Users.SetRole(ctx, user.Email, user.Role, user.Status)
		if err != nil {
			return fmt.Errorf("set role for %s: %w", email, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
		return nil
	},
}

// plantnetctl stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the admin statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		cfg, storage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer storage.Close()

		instruments, shutdown, err := platformobservability.Init(ctx, "plantnetctl")
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
		services, err := api.BuildServices(ctx, cfg, instruments, storage)
		if err != nil {
			return err
		}
		defer services.Close()

		stats, err := services.Stats.ComputeAdminStats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statsmapper.FromDomainStats(stats))
	},
}
