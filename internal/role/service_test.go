package role_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/hospital-management/internal"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/hospital-management/internal/permission/postgres"
	"github.com/frahmantamala/hospital-management/internal/role"
	rolePostgres "github.com/frahmantamala/hospital-management/internal/role/postgres"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRole(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Suite")
}

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(db.AutoMigrate(
		&permissionDatamodel.Permission{},
		&roleDatamodel.Role{},
		&userDatamodel.User{},
	)).To(Succeed())
	return db
}

// staleNameCheck misses a role created by a concurrent request.
type staleNameCheck struct {
	*rolePostgres.RoleRepository
}

func (staleNameCheck) GetByName(context.Context, string) (*roleDatamodel.Role, error) {
	return nil, nil
}

var _ = Describe("Role Service", func() {
	var (
		db      *gorm.DB
		service *role.Service
		ctx     context.Context
		permIDs map[string]int64
	)

	refs := func(r ...string) permission.Refs { return permission.Refs(r) }

	BeforeEach(func() {
		ctx = context.Background()
		db = openTestDB()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		permRepo := permissionPostgres.NewPermissionRepository(db)
		permIDs = map[string]int64{}
		for _, p := range []permissionDatamodel.Permission{
			{Name: "monitor_vitals", Group: "nurse"},
			{Name: "administer_medication", Group: "nurse"},
			{Name: "view_patient_records", Group: "doctor"},
		} {
			Expect(permRepo.Create(ctx, &p)).To(Succeed())
			permIDs[p.Name] = p.ID
		}

		service = role.NewService(rolePostgres.NewRoleRepository(db), permRepo, slogger)
	})

	Describe("Create", func() {
		It("should store exactly the resolved permission set", func() {
			created, err := service.Create(ctx, role.CreateRoleDTO{Name: "nurse", Permissions: refs("monitor_vitals")})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Permissions).To(HaveLen(1))
			Expect(created.Permissions[0].ID).To(Equal(permIDs["monitor_vitals"]))
		})

		It("should reject a second role with the same name", func() {
			_, err := service.Create(ctx, role.CreateRoleDTO{Name: "nurse", Permissions: refs("monitor_vitals")})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, role.CreateRoleDTO{Name: "nurse"})
			Expect(errors.Is(err, internal.ErrRoleExists)).To(BeTrue())
		})

		It("should answer a conflict when the name is taken between check and insert", func() {
			_, err := service.Create(ctx, role.CreateRoleDTO{Name: "nurse"})
			Expect(err).NotTo(HaveOccurred())

			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			racing := role.NewService(staleNameCheck{rolePostgres.NewRoleRepository(db)},
				permissionPostgres.NewPermissionRepository(db), slogger)

			_, err = racing.Create(ctx, role.CreateRoleDTO{Name: "nurse"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleExists))
		})

		It("should resolve ids and names together", func() {
			created, err := service.Create(ctx, role.CreateRoleDTO{
				Name:        "head_nurse",
				Permissions: refs("view_patient_records", "1", "monitor_vitals"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.PermissionNames()).To(Equal([]string{"monitor_vitals", "view_patient_records"}))
		})

		It("should default the profile model from the role name", func() {
			created, err := service.Create(ctx, role.CreateRoleDTO{Name: "receptionist"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ProfileModel).To(Equal("ReceptionistDetail"))

			other, err := service.Create(ctx, role.CreateRoleDTO{Name: "auditor"})
			Expect(err).NotTo(HaveOccurred())
			Expect(other.ProfileModel).To(BeEmpty())
		})

		It("should reject an unknown profile model", func() {
			pm := "Surgeon"
			_, err := service.Create(ctx, role.CreateRoleDTO{Name: "surgeon", ProfileModel: &pm})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("should require a name", func() {
			_, err := service.Create(ctx, role.CreateRoleDTO{Name: "  "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Update", func() {
		var nurseID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, role.CreateRoleDTO{
				Name:        "nurse",
				Permissions: refs("monitor_vitals", "administer_medication"),
			})
			Expect(err).NotTo(HaveOccurred())
			nurseID = created.ID
		})

		It("should replace the permission list wholesale", func() {
			next := refs("view_patient_records")
			updated, err := service.Update(ctx, nurseID, role.UpdateRoleDTO{Permissions: &next})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PermissionNames()).To(Equal([]string{"view_patient_records"}))
		})

		It("should keep permissions when the list is omitted", func() {
			name := "senior_nurse"
			updated, err := service.Update(ctx, nurseID, role.UpdateRoleDTO{Name: &name})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("senior_nurse"))
			Expect(updated.Permissions).To(HaveLen(2))
		})

		It("should clear permissions with an empty list", func() {
			empty := refs()
			updated, err := service.Update(ctx, nurseID, role.UpdateRoleDTO{Permissions: &empty})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Permissions).To(BeEmpty())
		})

		It("should refuse to rename onto another role", func() {
			_, err := service.Create(ctx, role.CreateRoleDTO{Name: "doctor"})
			Expect(err).NotTo(HaveOccurred())

			name := "doctor"
			_, err = service.Update(ctx, nurseID, role.UpdateRoleDTO{Name: &name})
			Expect(errors.Is(err, internal.ErrRoleExists)).To(BeTrue())
		})

		It("should return not found for an unknown id", func() {
			name := "x"
			_, err := service.Update(ctx, 404, role.UpdateRoleDTO{Name: &name})
			Expect(errors.Is(err, internal.ErrRoleNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should leave users pointing at the deleted role", func() {
			created, err := service.Create(ctx, role.CreateRoleDTO{Name: "nurse", Permissions: refs("monitor_vitals")})
			Expect(err).NotTo(HaveOccurred())

			u := &userDatamodel.User{Email: "n@example.com", Name: "N", Gender: "female", PasswordHash: "x", RoleID: &created.ID}
			Expect(db.Create(u).Error).To(Succeed())

			Expect(service.Delete(ctx, created.ID)).To(Succeed())

			var reloaded userDatamodel.User
			Expect(db.First(&reloaded, u.ID).Error).To(Succeed())
			Expect(*reloaded.RoleID).To(Equal(created.ID))

			_, err = service.ResolveRole(ctx, created.ID)
			Expect(errors.Is(err, internal.ErrRoleNotFound)).To(BeTrue())
		})

		It("should return not found for an unknown id", func() {
			Expect(errors.Is(service.Delete(ctx, 404), internal.ErrRoleNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		do := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		BeforeEach(func() {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			handler := role.NewHandler(transport.NewBaseHandler(slogger), service)
			router = chi.NewRouter()
			router.Post("/roles", handler.CreateRole)
			router.Get("/roles", handler.ListRoles)
			router.Get("/roles/{id}", handler.GetRole)
			router.Put("/roles/{id}", handler.UpdateRole)
			router.Delete("/roles/{id}", handler.DeleteRole)
		})

		It("should accept numeric and named permission refs", func() {
			body := `{"name":"nurse","permissions":[1,"view_patient_records"]}`
			rec := do(http.MethodPost, "/roles", body)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var created role.Role
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.PermissionNames()).To(ConsistOf("monitor_vitals", "view_patient_records"))
			Expect(created.ProfileModel).To(Equal("NurseDetail"))
		})

		It("should answer 409 on a duplicate and 404 on a missing id", func() {
			Expect(do(http.MethodPost, "/roles", `{"name":"nurse"}`).Code).To(Equal(http.StatusCreated))
			Expect(do(http.MethodPost, "/roles", `{"name":"nurse"}`).Code).To(Equal(http.StatusConflict))
			Expect(do(http.MethodGet, "/roles/99", "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodDelete, "/roles/99", "").Code).To(Equal(http.StatusNotFound))
		})

		It("should answer 400 for a missing name", func() {
			rec := do(http.MethodPost, "/roles", `{"permissions":[]}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should list roles", func() {
			do(http.MethodPost, "/roles", `{"name":"nurse"}`)
			do(http.MethodPost, "/roles", `{"name":"doctor"}`)

			var resp role.RolesResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/roles", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Roles).To(HaveLen(2))
		})
	})
})
