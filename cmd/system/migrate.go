package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create collection indexes and seed the built-in roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			db, err := database.New(ctx, database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to connect to mongo: %w", err)
			}
			defer db.Close(context.Background())

			fmt.Println("Ensuring indexes.")
			if err := repo.EnsureIndexes(ctx, db.Database()); err != nil {
				return fmt.Errorf("failed to ensure indexes: %w", err)
			}

			client := repo.NewMongo(db.Database())
			for role := range authorize.KnownRoles {
				if _, err := client.Role.Ensure(ctx, string(role)); err != nil {
					return fmt.Errorf("failed to seed role %s: %w", role, err)
				}
				slog.Info("role ready", "role", role)
			}

			// the policy set lives in code; loading it here fails fast on a bad seed
			if _, err := authorize.New(ctx, authorize.FromCentralConfig(cfg.Authorization)); err != nil {
				return fmt.Errorf("failed to load authorization policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
