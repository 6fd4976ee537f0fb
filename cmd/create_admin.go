package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"taskboard.com/taskboard/internal/auth"
	"taskboard.com/taskboard/internal/services"
)

var adminInput services.SignupInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := openStore(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Error("failed to open store")
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()

		authService := services.NewAuthService(store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), log)
		user, created, err := authService.EnsureAdmin(ctx, adminInput)
		if err != nil {
			log.WithError(err).Error("failed to create admin")
			return err
		}

		if created {
			cmd.Printf("admin %s created with id %s\n", user.Email, user.ID)
		} else {
			cmd.Printf("%s promoted to admin\n", user.Email)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Name, "name", "Admin", "display name of the admin")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "email of the admin")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "password of the admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd)
}
