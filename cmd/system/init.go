package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/database"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

func NewInitCommand() *cobra.Command {
	var name, email, pass string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the first administrator account",
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

			hasher := password.NewHasher(password.FromCentralConfig(cfg.Password))
			u, err := account.Create(ctx, repo.NewMongo(db.Database()), hasher, account.Request{
				Name:     name,
				Email:    email,
				Password: pass,
			}, authorize.RoleAdmin, nil)
			if errors.Is(err, account.ErrEmailTaken) {
				fmt.Printf("Account %s already exists, nothing to do.\n", email)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Administrator %s created (id %s).\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name of the admin account")
	cmd.Flags().StringVar(&email, "email", "", "Login email of the admin account")
	cmd.Flags().StringVar(&pass, "password", "", "Initial password of the admin account")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
