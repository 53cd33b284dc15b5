package website_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/hospital-management/internal"
	websiteDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/website"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/frahmantamala/hospital-management/internal/website"
	websitePostgres "github.com/frahmantamala/hospital-management/internal/website/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestWebsite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Website Suite")
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

	Expect(db.AutoMigrate(&websiteDatamodel.Message{}, &websiteDatamodel.Subscriber{})).To(Succeed())
	return db
}

// staleSubscriberCheck misses a subscription stored by a concurrent request.
type staleSubscriberCheck struct {
	*websitePostgres.WebsiteRepository
}

func (staleSubscriberCheck) GetSubscriber(context.Context, string) (*websiteDatamodel.Subscriber, error) {
	return nil, nil
}

var _ = Describe("Website Service", func() {
	var (
		db      *gorm.DB
		service *website.Service
		ctx     context.Context
		slogger *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openTestDB()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = website.NewService(websitePostgres.NewWebsiteRepository(db), slogger)
	})

	Describe("SubmitContactMessage", func() {
		It("should store a new message", func() {
			msg, err := service.SubmitContactMessage(ctx, website.ContactMessageDTO{
				FirstName: "Ana", LastName: "Lee", Email: " Ana@Example.com ", Message: "Do you accept walk-ins?",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(msg.ID).NotTo(BeZero())
			Expect(msg.Email).To(Equal("ana@example.com"))
			Expect(msg.Status).To(Equal(website.MessageStatusNew))
		})

		It("should require every field", func() {
			_, err := service.SubmitContactMessage(ctx, website.ContactMessageDTO{FirstName: "Ana"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("lastName"))
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("message"))
		})
	})

	Describe("Subscribe", func() {
		It("should refuse the same address twice regardless of case", func() {
			Expect(service.Subscribe(ctx, website.SubscribeDTO{Email: "news@example.com"})).To(Succeed())

			err := service.Subscribe(ctx, website.SubscribeDTO{Email: "NEWS@example.com"})
			Expect(errors.Is(err, internal.ErrAlreadySubscribed)).To(BeTrue())

			var count int64
			db.Model(&websiteDatamodel.Subscriber{}).Count(&count)
			Expect(count).To(Equal(int64(1)))
		})

		It("should answer the same error when the duplicate is caught by the unique index", func() {
			Expect(service.Subscribe(ctx, website.SubscribeDTO{Email: "news@example.com"})).To(Succeed())
			racing := website.NewService(staleSubscriberCheck{websitePostgres.NewWebsiteRepository(db)}, slogger)

			err := racing.Subscribe(ctx, website.SubscribeDTO{Email: "news@example.com"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAlreadySubscribed))
		})

		It("should reject a malformed address", func() {
			err := service.Subscribe(ctx, website.SubscribeDTO{Email: "not-an-email"})
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("Website Handler", func() {
	var router chi.Router

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := website.NewHandler(transport.NewBaseHandler(slogger),
			website.NewService(websitePostgres.NewWebsiteRepository(openTestDB()), slogger))

		router = chi.NewRouter()
		router.Post("/web/contact", handler.SubmitContact)
		router.Post("/web/subscribe", handler.Subscribe)
	})

	It("should answer 201 for a contact message", func() {
		rec := post("/web/contact", `{"firstName":"Ana","lastName":"Lee","email":"ana@example.com","message":"Hi"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("Message sent successfully!"))
	})

	It("should answer 400 for a repeated subscription", func() {
		Expect(post("/web/subscribe", `{"email":"news@example.com"}`).Code).To(Equal(http.StatusCreated))

		rec := post("/web/subscribe", `{"email":"news@example.com"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("ALREADY_SUBSCRIBED"))
	})
})
