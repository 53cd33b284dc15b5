package permission_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	"github.com/frahmantamala/hospital-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/hospital-management/internal/permission/postgres"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Permission Handler Integration", func() {
	var router chi.Router

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&permissionDatamodel.Permission{}, &roleDatamodel.Role{})).To(Succeed())

		service := permission.NewService(permissionPostgres.NewPermissionRepository(db), slogger)
		handler := permission.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/permissions", handler.ListPermissions)
		router.Post("/permissions", handler.CreatePermission)
		router.Get("/permissions/{id}", handler.GetPermission)
		router.Put("/permissions/{id}", handler.UpdatePermission)
		router.Delete("/permissions/{id}", handler.DeletePermission)
	})

	It("should create and fetch a permission", func() {
		rec := do(http.MethodPost, "/permissions", `{"name":"monitor_vitals","group":"nurse"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created permission.Permission
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		Expect(created.Group).To(Equal("nurse"))

		rec = do(http.MethodGet, "/permissions/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"monitor_vitals"`))
	})

	It("should answer 409 for a duplicate name", func() {
		do(http.MethodPost, "/permissions", `{"name":"monitor_vitals","group":"nurse"}`)

		rec := do(http.MethodPost, "/permissions", `{"name":"monitor_vitals","group":"doctor"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("PERMISSION_EXISTS"))
	})

	It("should answer 400 for a malformed body", func() {
		rec := do(http.MethodPost, "/permissions", `{"name":`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_BODY"))
	})

	It("should answer 400 for a non numeric id", func() {
		rec := do(http.MethodGet, "/permissions/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should delete and then 404", func() {
		do(http.MethodPost, "/permissions", `{"name":"monitor_vitals","group":"nurse"}`)

		Expect(do(http.MethodDelete, "/permissions/1", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/permissions/1", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should list permissions", func() {
		do(http.MethodPost, "/permissions", `{"name":"a","group":"admin"}`)
		do(http.MethodPost, "/permissions", `{"name":"b","group":"doctor"}`)

		rec := do(http.MethodGet, "/permissions", "")
		var resp permission.PermissionsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Permissions).To(HaveLen(2))
	})
})
