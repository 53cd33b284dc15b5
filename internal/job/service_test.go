package job_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/hospital-management/internal"
	jobDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/job"
	"github.com/frahmantamala/hospital-management/internal/job"
	jobPostgres "github.com/frahmantamala/hospital-management/internal/job/postgres"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestJob(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Job Suite")
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

	Expect(db.AutoMigrate(&jobDatamodel.Job{})).To(Succeed())
	return db
}

var _ = Describe("Job Service", func() {
	var (
		db      *gorm.DB
		service *job.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openTestDB()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = job.NewService(jobPostgres.NewJobRepository(db), slogger)
	})

	It("should post an open position with trimmed requirements", func() {
		j, err := service.Create(ctx, job.CreateJobDTO{
			Title:        " Staff Nurse ",
			Type:         job.TypeFullTime,
			Location:     "Jakarta",
			Requirements: []string{"BLS certificate", "  ", " 2 years ICU "},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(j.Title).To(Equal("Staff Nurse"))
		Expect(j.IsOpen).To(BeTrue())
		Expect(j.Requirements).To(Equal([]string{"BLS certificate", "2 years ICU"}))
		Expect(j.PostedAt).NotTo(BeZero())
	})

	It("should require title, type and location", func() {
		_, err := service.Create(ctx, job.CreateJobDTO{Type: "Internship"})

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("title"))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("type"))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("location"))
	})

	It("should list only open positions", func() {
		open, err := service.Create(ctx, job.CreateJobDTO{Title: "Radiologist", Type: job.TypeContract, Location: "Bandung"})
		Expect(err).NotTo(HaveOccurred())
		closed, err := service.Create(ctx, job.CreateJobDTO{Title: "Porter", Type: job.TypePartTime, Location: "Bandung"})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Model(&jobDatamodel.Job{}).Where("id = ?", closed.ID).Update("is_open", false).Error).To(Succeed())

		jobs, err := service.ListOpen(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(jobs).To(HaveLen(1))
		Expect(jobs[0].ID).To(Equal(open.ID))
	})
})

var _ = Describe("Job Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := job.NewHandler(transport.NewBaseHandler(slogger),
			job.NewService(jobPostgres.NewJobRepository(openTestDB()), slogger))

		router = chi.NewRouter()
		router.Get("/jobs", handler.ListJobs)
		router.Post("/jobs", handler.CreateJob)
	})

	It("should create a position and list it", func() {
		req := httptest.NewRequest(http.MethodPost, "/jobs",
			strings.NewReader(`{"title":"Pharmacist","type":"Temporary","location":"Surabaya"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("Job position created successfully"))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"success":true`))
		Expect(rec.Body.String()).To(ContainSubstring(`"title":"Pharmacist"`))
	})
})
