package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doc-translator/backend/internal/auth"
	"github.com/doc-translator/backend/internal/config"
	"github.com/doc-translator/backend/internal/db"
	"github.com/doc-translator/backend/internal/db/models"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		username string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			if !models.ValidRole(role) {
				return fmt.Errorf("role must be one of: %s, %s", models.RoleAdmin, models.RoleUser)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			database, err := db.NewSQLite(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			id, err := database.CreateUser(username, hash, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d, role %s)\n", username, id, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&role, "role", models.RoleUser, "Role: admin or user")
	return cmd
}
