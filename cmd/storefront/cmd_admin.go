package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

var superAdminFlags service.SuperAdminRequest

// The first super admin has nobody to invite it, so it is created here.
var createSuperAdminCmd = &cobra.Command{
	Use:   "create-superadmin",
	Short: "Create a super admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, gdb, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}

		svc := &service.AuthService{Repo: repo.New(gdb), Events: mykafka.NopPublisher{}, JWTSecret: cfg.JWTSecret}
		admin, err := svc.CreateSuperAdmin(ctx, superAdminFlags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "super admin %q created (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

var (
	inviteIssuer uint
	inviteEmail  string
	inviteRole   string
)

var inviteAdminCmd = &cobra.Command{
	Use:   "invite-admin",
	Short: "Issue an admin invitation token on behalf of a super admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, gdb, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		svc := &service.AuthService{
			Repo:      repo.New(gdb),
			Events:    mykafka.NopPublisher{},
			JWTSecret: cfg.JWTSecret,
			InviteTTL: cfg.InviteTTL,
		}
		token, err := svc.IssueAdminInvitation(ctx, inviteIssuer, inviteEmail, models.AdminRole(inviteRole))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	f := createSuperAdminCmd.Flags()
	f.StringVar(&superAdminFlags.Email, "email", "", "admin email")
	f.StringVar(&superAdminFlags.Username, "username", "", "admin username")
	f.StringVar(&superAdminFlags.Password, "password", "", "admin password")
	f.StringVar(&superAdminFlags.FullName, "full-name", "", "display name")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("username")
	_ = createSuperAdminCmd.MarkFlagRequired("password")

	f = inviteAdminCmd.Flags()
	f.UintVar(&inviteIssuer, "issuer", 0, "id of the issuing super admin")
	f.StringVar(&inviteEmail, "email", "", "email the invitation is bound to")
	f.StringVar(&inviteRole, "role", string(models.RoleAdmin), "role granted on registration")
	_ = inviteAdminCmd.MarkFlagRequired("issuer")
	_ = inviteAdminCmd.MarkFlagRequired("email")
}
