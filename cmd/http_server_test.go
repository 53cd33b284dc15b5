package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	appointmentDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/appointment"
	"github.com/frahmantamala/hospital-management/internal/core/events"
	faqDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/faq"
	jobDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/job"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	websiteDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/website"
	"github.com/frahmantamala/hospital-management/internal/mail"
	"github.com/frahmantamala/hospital-management/internal/ratelimit"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

var (
	verifyLinkPattern = regexp.MustCompile(`/api/v1/auth/verify/(\S+)`)
	otpPattern        = regexp.MustCompile(`code is (\d{6})`)
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
)

func testConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{Port: 8080, BaseURL: "http://localhost:8080", Env: "test"},
		Security: internal.SecurityConfig{
			AccessTokenSecret:    "access-secret-access-secret-access-secret",
			RefreshTokenSecret:   "refresh-secret-refresh-secret-refresh-secret",
			AccessTokenDuration:  time.Hour,
			RefreshTokenDuration: 24 * time.Hour,
			VerifyTokenDuration:  time.Hour,
			BCryptCost:           bcrypt.MinCost,
			OTPSecret:            "otp-secret",
			OTPTTL:               5 * time.Minute,
		},
		RateLimit: internal.RateLimitConfig{
			Enabled:         true,
			Backend:         "memory",
			Window:          time.Minute,
			MaxRequests:     1000,
			AuthMaxRequests: 1000,
		},
		Observability: internal.ObservabilityConfig{
			Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
}

type testServer struct {
	router chi.Router
	bus    *events.EventBus
	mailer *mail.LogMailer
	db     *gorm.DB
}

func newTestServer(cfg *internal.Config) *testServer {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := gormDB.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(gormDB.AutoMigrate(
		&permissionDatamodel.Permission{},
		&roleDatamodel.Role{},
		&userDatamodel.User{},
		&profileDatamodel.DoctorProfile{},
		&profileDatamodel.PatientProfile{},
		&profileDatamodel.NurseProfile{},
		&profileDatamodel.ReceptionistProfile{},
		&appointmentDatamodel.Appointment{},
		&faqDatamodel.FAQ{},
		&jobDatamodel.Job{},
		&websiteDatamodel.Message{},
		&websiteDatamodel.Subscriber{},
	)).To(Succeed())

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	Expect(seed(context.Background(), gormDB, seedOptions{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		BCryptCost:    bcrypt.MinCost,
	}, lg)).To(Succeed())

	mailer := mail.NewLogMailer(lg)
	deps := &Dependencies{
		Config:  cfg,
		DB:      sqlx.NewDb(sqlDB, "sqlite3"),
		Gorm:    gormDB,
		Mailer:  mailer,
		Logger:  lg,
		Limiter: ratelimit.NewMemoryLimiter(lg),
	}

	router, bus, err := buildRouter(deps)
	Expect(err).NotTo(HaveOccurred())

	return &testServer{router: router, bus: bus, mailer: mailer, db: gormDB}
}

func (s *testServer) do(method, path, token string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// lastMail returns the newest message sent to addr.
func (s *testServer) lastMail(addr string) mail.Message {
	sent := s.mailer.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To == addr {
			return sent[i]
		}
	}
	Fail("no mail sent to " + addr)
	return mail.Message{}
}

// login runs the password and OTP steps and returns the access token.
func (s *testServer) login(email, password string) string {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

	var challenge struct {
		Hash string `json:"hash"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &challenge)).To(Succeed())

	match := otpPattern.FindStringSubmatch(s.lastMail(email).Body)
	Expect(match).To(HaveLen(2))

	rec = s.do(http.MethodPost, "/api/v1/auth/verify-otp", "",
		`{"email":"`+email+`","otp":"`+match[1]+`","hash":"`+challenge.Hash+`"}`)
	Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(Succeed())
	Expect(tokens.AccessToken).NotTo(BeEmpty())
	return tokens.AccessToken
}

// registerVerified signs up through the public endpoint and follows the
// mailed verification link.
func (s *testServer) registerVerified(email string) {
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Pat","email":"`+email+`","password":"secret123","gender":"male"}`)
	Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

	Expect(s.bus.Wait(context.Background())).To(Succeed())
	match := verifyLinkPattern.FindStringSubmatch(s.lastMail(email).Body)
	Expect(match).To(HaveLen(2))

	rec = s.do(http.MethodGet, "/api/v1/auth/verify/"+match[1], "", "")
	Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
}

var _ = Describe("HTTP server", func() {
	var server *testServer

	BeforeEach(func() {
		server = newTestServer(testConfig())
	})

	It("should serve liveness, the OpenAPI document and metrics", func() {
		Expect(server.do(http.MethodGet, "/api/v1/ping", "", "").Code).To(Equal(http.StatusOK))

		rec := server.do(http.MethodGet, "/openapi.yml", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))

		Expect(server.do(http.MethodGet, "/metrics", "", "").Code).To(Equal(http.StatusOK))
	})

	It("should echo a trace id on every response", func() {
		rec := server.do(http.MethodGet, "/api/v1/ping", "", "")
		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})

	It("should take a new patient from sign up to a stored profile", func() {
		server.registerVerified("pat@example.com")
		token := server.login("pat@example.com", "secret123")

		rec := server.do(http.MethodGet, "/api/v1/patients/profile", token, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("PROFILE_NOT_CREATED"))

		rec = server.do(http.MethodPost, "/api/v1/patients/profile", token, `{"DOB":"1990-01-01","Gender":"Male"}`)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring(`"created":true`))

		rec = server.do(http.MethodGet, "/api/v1/patients/profile", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

		var profile struct {
			PersonalInfo struct {
				DOB    string `json:"DOB"`
				Gender string `json:"Gender"`
			} `json:"personalInfo"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &profile)).To(Succeed())
		Expect(profile.PersonalInfo.DOB).To(Equal("1990-01-01T00:00:00Z"))
		Expect(profile.PersonalInfo.Gender).To(Equal("Male"))

		var stored userDatamodel.User
		Expect(server.db.Where("email = ?", "pat@example.com").First(&stored).Error).To(Succeed())
		Expect(stored.HasProfile()).To(BeTrue())
		Expect(*stored.ProfileModel).To(Equal("Patient"))
	})

	It("should not let a login challenge be spent on another account", func() {
		server.registerVerified("mallory@example.com")

		rec := server.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"mallory@example.com","password":"secret123"}`)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var challenge struct {
			Phone string `json:"phone"`
			Hash  string `json:"hash"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &challenge)).To(Succeed())
		match := otpPattern.FindStringSubmatch(server.lastMail("mallory@example.com").Body)
		Expect(match).To(HaveLen(2))

		rec = server.do(http.MethodPost, "/api/v1/auth/verify-otp", "",
			`{"email":"`+adminEmail+`","otp":"`+match[1]+`","hash":"`+challenge.Hash+`","phone":"`+challenge.Phone+`"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_OTP"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("accessToken"))
	})

	It("should keep unverified accounts out of protected routes", func() {
		rec := server.do(http.MethodPost, "/api/v1/auth/register", "",
			`{"name":"Pat","email":"late@example.com","password":"secret123","gender":"male"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		token := server.login("late@example.com", "secret123")
		Expect(server.do(http.MethodGet, "/api/v1/users/me", token, "").Code).To(Equal(http.StatusForbidden))
	})

	It("should gate routes by role", func() {
		server.registerVerified("pat@example.com")
		patient := server.login("pat@example.com", "secret123")
		admin := server.login(adminEmail, adminPassword)

		Expect(server.do(http.MethodGet, "/api/v1/stats", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(server.do(http.MethodGet, "/api/v1/stats", patient, "").Code).To(Equal(http.StatusForbidden))
		Expect(server.do(http.MethodGet, "/api/v1/doctors", patient, "").Code).To(Equal(http.StatusForbidden))

		rec := server.do(http.MethodGet, "/api/v1/stats", admin, "")
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring(`"success":true`))

		rec = server.do(http.MethodGet, "/api/v1/roles", admin, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("receptionist"))
	})

	It("should let a staff member open a verified account directly", func() {
		admin := server.login(adminEmail, adminPassword)

		rec := server.do(http.MethodPost, "/api/v1/auth/register", admin,
			`{"name":"Walk In","email":"walkin@example.com","password":"secret123","gender":"female"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"isVerified":true`))
	})

	It("should serve site content publicly and keep its management for admins", func() {
		Expect(server.do(http.MethodGet, "/api/v1/jobs", "", "").Code).To(Equal(http.StatusOK))
		Expect(server.do(http.MethodPost, "/api/v1/jobs", "", `{"title":"x","type":"Contract","location":"y"}`).Code).
			To(Equal(http.StatusUnauthorized))
		Expect(server.do(http.MethodGet, "/api/v1/faqs", "", "").Code).To(Equal(http.StatusUnauthorized))

		server.registerVerified("pat@example.com")
		patient := server.login("pat@example.com", "secret123")
		Expect(server.do(http.MethodPost, "/api/v1/faqs", patient, `{"keywords":["hours"],"response":"8 to 8"}`).Code).
			To(Equal(http.StatusForbidden))

		admin := server.login(adminEmail, adminPassword)
		rec := server.do(http.MethodPost, "/api/v1/faqs", admin, `{"keywords":["hours"],"response":"8 to 8","category":"hours"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		rec = server.do(http.MethodPost, "/api/v1/jobs", admin, `{"title":"Midwife","type":"Full-Time","location":"Jakarta"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		rec = server.do(http.MethodGet, "/api/v1/faqs/category/hours", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("8 to 8"))
		Expect(server.do(http.MethodGet, "/api/v1/jobs", "", "").Body.String()).To(ContainSubstring("Midwife"))

		Expect(server.do(http.MethodPost, "/api/v1/web/subscribe", "", `{"email":"fan@example.com"}`).Code).To(Equal(http.StatusCreated))
		Expect(server.do(http.MethodPost, "/api/v1/web/subscribe", "", `{"email":"fan@example.com"}`).Code).To(Equal(http.StatusBadRequest))
		Expect(server.do(http.MethodPost, "/api/v1/web/contact", "",
			`{"firstName":"A","lastName":"B","email":"a@example.com","message":"hello"}`).Code).To(Equal(http.StatusCreated))
	})

	It("should let a patient book with a doctor and see the booking", func() {
		server.registerVerified("doc@example.com")
		admin := server.login(adminEmail, adminPassword)

		var doc userDatamodel.User
		Expect(server.db.Where("email = ?", "doc@example.com").First(&doc).Error).To(Succeed())
		var doctorRole roleDatamodel.Role
		Expect(server.db.Where("name = ?", "doctor").First(&doctorRole).Error).To(Succeed())

		rec := server.do(http.MethodPut, "/api/v1/users/"+jsonID(doc.ID)+"/role", admin, `{"roleId":`+jsonID(doctorRole.ID)+`}`)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("User role updated to doctor"))

		server.registerVerified("pat@example.com")
		patient := server.login("pat@example.com", "secret123")

		rec = server.do(http.MethodPost, "/api/v1/appointments", patient,
			`{"doctorId":`+jsonID(doc.ID)+`,"date":"2030-05-01T10:00:00Z","type":"Check-up"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		rec = server.do(http.MethodGet, "/api/v1/appointments/patient", patient, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"specialization":"General"`))
	})
})

var _ = Describe("Auth rate limiting", func() {
	It("should answer 429 once the login budget is spent", func() {
		cfg := testConfig()
		cfg.RateLimit.AuthMaxRequests = 2
		server := newTestServer(cfg)

		body := `{"email":"nobody@example.com","password":"whatever"}`
		for i := 0; i < 2; i++ {
			Expect(server.do(http.MethodPost, "/api/v1/auth/login", "", body).Code).NotTo(Equal(http.StatusTooManyRequests))
		}

		rec := server.do(http.MethodPost, "/api/v1/auth/login", "", body)
		Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
		Expect(rec.Header().Get("Retry-After")).NotTo(BeEmpty())
		Expect(rec.Header().Get("X-RateLimit-Remaining")).To(Equal("0"))
	})

	login := func(server *testServer, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"nobody@example.com","password":"whatever"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)
		return rec.Code
	}

	It("should not reset the budget when the caller rotates X-Forwarded-For", func() {
		cfg := testConfig()
		cfg.RateLimit.AuthMaxRequests = 2
		server := newTestServer(cfg)

		limited := 0
		for i := 0; i < 10; i++ {
			if login(server, "10.0.0."+strconv.Itoa(i+1)) == http.StatusTooManyRequests {
				limited++
			}
		}
		Expect(limited).To(Equal(8))
	})

	It("should key on the forwarded address behind a trusted proxy", func() {
		cfg := testConfig()
		cfg.RateLimit.AuthMaxRequests = 2
		cfg.RateLimit.TrustProxy = true
		server := newTestServer(cfg)

		for i := 0; i < 2; i++ {
			Expect(login(server, "10.0.0.1")).NotTo(Equal(http.StatusTooManyRequests))
		}
		Expect(login(server, "10.0.0.1")).To(Equal(http.StatusTooManyRequests))
		Expect(login(server, "10.0.0.2")).NotTo(Equal(http.StatusTooManyRequests))
	})
})

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
