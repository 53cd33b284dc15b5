package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal/auth"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/profile"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed permissions, roles and an optional admin account",
	Long:  `Create the default permissions and roles, attach permissions to roles by group, and optionally an admin user. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := initLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return err
		}

		return seed(cmd.Context(), gormDB, seedOptions{
			AdminEmail:    seedAdminEmail,
			AdminPassword: seedAdminPassword,
			BCryptCost:    cfg.Security.BCryptCost,
		}, lg)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "create a verified admin with this email")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password for --admin-email")
}

type seedPermission struct {
	Name  string
	Group string
}

// defaultPermissions are grouped by the role that receives them.
var defaultPermissions = []seedPermission{
	{"manage_users", auth.RoleAdmin},
	{"manage_system", auth.RoleAdmin},
	{"view_reports", auth.RoleAdmin},
	{auth.PermissionAssignRoles, auth.RoleAdmin},
	{"view_logs", auth.RoleAdmin},
	{"access_analytics", auth.RoleAdmin},

	{auth.PermissionViewPatientRecords, auth.RoleDoctor},
	{"edit_patient_records", auth.RoleDoctor},
	{"prescribe_medication", auth.RoleDoctor},
	{"schedule_appointments", auth.RoleDoctor},

	{auth.PermissionViewPatientRecords, auth.RoleNurse},
	{"administer_medication", auth.RoleNurse},
	{"assist_in_surgeries", auth.RoleNurse},
	{"monitor_vitals", auth.RoleNurse},

	{"schedule_appointments", auth.RoleReceptionist},
	{"check_in_patients", auth.RoleReceptionist},
	{"manage_invoices", auth.RoleReceptionist},
	{"view_patient_info", auth.RoleReceptionist},

	{"view_own_records", auth.RolePatient},
	{"book_appointments", auth.RolePatient},
	{"request_prescriptions", auth.RolePatient},
	{"view_medical_history", auth.RolePatient},
}

var defaultRoles = []struct {
	Name string
	Kind profile.Kind
}{
	{auth.RoleAdmin, ""},
	{auth.RoleDoctor, profile.KindDoctor},
	{auth.RoleNurse, profile.KindNurse},
	{auth.RoleReceptionist, profile.KindReceptionist},
	{auth.RolePatient, profile.KindPatient},
}

type seedOptions struct {
	AdminEmail    string
	AdminPassword string
	BCryptCost    int
}

func seed(ctx context.Context, db *gorm.DB, opts seedOptions, lg *slog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byGroup := make(map[string][]permissionDatamodel.Permission)
		for _, p := range defaultPermissions {
			row := permissionDatamodel.Permission{Name: p.Name, Group: p.Group}
			if err := tx.Where(&row).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed permission %s/%s: %w", p.Group, p.Name, err)
			}
			byGroup[p.Group] = append(byGroup[p.Group], row)
		}
		lg.Info("permissions seeded", "count", len(defaultPermissions))

		roleIDs := make(map[string]int64, len(defaultRoles))
		for _, r := range defaultRoles {
			row := roleDatamodel.Role{Name: r.Name}
			if err := tx.Where("name = ?", r.Name).
				Attrs(roleDatamodel.Role{ProfileModel: string(r.Kind)}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", r.Name, err)
			}
			if err := tx.Model(&row).Association("Permissions").Replace(byGroup[r.Name]); err != nil {
				return fmt.Errorf("attach permissions to %s: %w", r.Name, err)
			}
			roleIDs[r.Name] = row.ID
		}
		lg.Info("roles seeded", "count", len(defaultRoles))

		if opts.AdminEmail == "" {
			return nil
		}
		return seedAdmin(tx, opts, roleIDs[auth.RoleAdmin], lg)
	})
}

func seedAdmin(tx *gorm.DB, opts seedOptions, roleID int64, lg *slog.Logger) error {
	if len(opts.AdminPassword) < 6 {
		return errors.New("--admin-password must be at least 6 characters")
	}

	email := auth.NormalizeEmail(opts.AdminEmail)
	var existing int64
	if err := tx.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		lg.Info("admin user already exists", "email", email)
		return nil
	}

	cost := opts.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), cost)
	if err != nil {
		return err
	}

	admin := userDatamodel.User{
		Email:        email,
		Name:         "Administrator",
		Gender:       "other",
		PasswordHash: string(hash),
		IsVerified:   true,
		RoleID:       &roleID,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	lg.Info("admin user seeded", "email", email, "user_id", admin.ID)
	return nil
}
