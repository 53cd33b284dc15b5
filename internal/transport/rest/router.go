package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal/appointment"
	"github.com/frahmantamala/hospital-management/internal/auth"
	"github.com/frahmantamala/hospital-management/internal/faq"
	"github.com/frahmantamala/hospital-management/internal/job"
	"github.com/frahmantamala/hospital-management/internal/metrics"
	"github.com/frahmantamala/hospital-management/internal/permission"
	"github.com/frahmantamala/hospital-management/internal/profile"
	"github.com/frahmantamala/hospital-management/internal/ratelimit"
	"github.com/frahmantamala/hospital-management/internal/role"
	"github.com/frahmantamala/hospital-management/internal/stats"
	"github.com/frahmantamala/hospital-management/internal/transport/middleware"
	"github.com/frahmantamala/hospital-management/internal/transport/swagger"
	"github.com/frahmantamala/hospital-management/internal/user"
	"github.com/frahmantamala/hospital-management/internal/website"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Role        *role.Handler
	Permission  *permission.Handler
	Profile     *profile.Handler
	Appointment *appointment.Handler
	Stats       *stats.Handler
	FAQ         *faq.Handler
	Job         *job.Handler
	Website     *website.Handler
}

type Options struct {
	Health      map[string]Pinger
	OpenAPISpec []byte

	// Limiter is nil when rate limiting is disabled.
	Limiter    ratelimit.Limiter
	AuthPolicy ratelimit.Policy
	APIPolicy  ratelimit.Policy
	// TrustProxy rewrites RemoteAddr from forwarding headers.
	TrustProxy bool

	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(opts.Health)
	rbac := auth.NewRBACAuthorization(logger)

	limit := func(policy ratelimit.Policy) func(http.Handler) http.Handler {
		if opts.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return ratelimit.Middleware(opts.Limiter, policy, ratelimit.ClientKey, logger)
	}

	if opts.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(metrics.Middleware)

	// OpenAPI document and UI live outside the API prefix
	if len(opts.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public site content
		r.Group(func(pub chi.Router) {
			pub.Use(limit(opts.APIPolicy))
			if h.FAQ != nil {
				pub.Get("/faqs/category/{category}", h.FAQ.ListByCategory)
			}
			if h.Job != nil {
				pub.Get("/jobs", h.Job.ListJobs)
			}
			if h.Website != nil {
				pub.Post("/web/contact", h.Website.SubmitContact)
				pub.Post("/web/subscribe", h.Website.Subscribe)
			}
		})

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.With(h.Auth.OptionalAuthMiddleware).Post("/register", h.Auth.Register)
			ar.Get("/verify/{token}", h.Auth.VerifyEmail)
			ar.Post("/logout", h.Auth.Logout)

			ar.Group(func(lr chi.Router) {
				lr.Use(limit(opts.AuthPolicy))
				lr.Post("/login", h.Auth.Login)
				lr.Post("/verify-otp", h.Auth.VerifyOTP)
				lr.Post("/refresh", h.Auth.RefreshToken)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(limit(opts.APIPolicy))

			if h.User != nil {
				registerUserRoutes(pr, h.User, rbac)
			}
			if h.Role != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.Use(rbac.RequireRoles(auth.RoleAdmin))
					rr.Post("/", h.Role.CreateRole)
					rr.Get("/", h.Role.ListRoles)
					rr.Get("/{id}", h.Role.GetRole)
					rr.Put("/{id}", h.Role.UpdateRole)
					rr.Delete("/{id}", h.Role.DeleteRole)
				})
			}
			if h.Permission != nil {
				pr.Route("/permissions", func(rr chi.Router) {
					rr.Use(rbac.RequireRoles(auth.RoleAdmin))
					rr.Post("/", h.Permission.CreatePermission)
					rr.Get("/", h.Permission.ListPermissions)
					rr.Get("/{id}", h.Permission.GetPermission)
					rr.Put("/{id}", h.Permission.UpdatePermission)
					rr.Delete("/{id}", h.Permission.DeletePermission)
				})
			}
			if h.Profile != nil {
				registerProfileRoutes(pr, h.Profile, rbac)
			}
			if h.Appointment != nil {
				registerAppointmentRoutes(pr, h.Appointment, rbac)
			}
			if h.Stats != nil {
				pr.With(rbac.RequireRoles(auth.RoleAdmin)).Get("/stats", h.Stats.GetStats)
			}
			if h.FAQ != nil {
				pr.Group(func(fr chi.Router) {
					fr.Use(rbac.RequireRoles(auth.RoleAdmin))
					fr.Get("/faqs", h.FAQ.ListFAQs)
					fr.Post("/faqs", h.FAQ.CreateFAQ)
					fr.Get("/faqs/{id}", h.FAQ.GetFAQ)
					fr.Put("/faqs/{id}", h.FAQ.UpdateFAQ)
					fr.Delete("/faqs/{id}", h.FAQ.DeleteFAQ)
				})
			}
			if h.Job != nil {
				pr.With(rbac.RequireRoles(auth.RoleAdmin)).Post("/jobs", h.Job.CreateJob)
			}
		})
	})
}

func registerUserRoutes(r chi.Router, h *user.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/me", h.GetCurrentUser)
		ur.Put("/me", h.UpdateCurrentUser)

		ur.With(rbac.RequireRoles(auth.RoleAdmin)).Get("/", h.ListUsers)
		ur.With(rbac.RequireSelfOrRole("id", auth.RoleAdmin)).Get("/{id}", h.GetUser)
		ur.With(rbac.RequireRoles(auth.RoleAdmin)).Delete("/{id}", h.DeleteUser)
		ur.With(rbac.RequireRolesOrPermissions(
			[]string{auth.RoleAdmin},
			[]string{auth.PermissionAssignRoles},
		)).Put("/{id}/role", h.UpdateUserRole)
	})
}

func registerProfileRoutes(r chi.Router, h *profile.Handler, rbac *auth.RBACAuthorization) {
	admin := rbac.RequireRoles(auth.RoleAdmin)

	r.Route("/doctors", func(dr chi.Router) {
		dr.Group(func(own chi.Router) {
			own.Use(rbac.RequireRoles(auth.RoleDoctor))
			own.Post("/profile", h.UpsertDoctor)
			own.Get("/profile", h.GetOwn(profile.KindDoctor))
			own.Put("/shift", h.UpdateDoctorShift)
		})
		readers := rbac.RequireRoles(auth.RoleAdmin, auth.RoleReceptionist)
		dr.With(readers).Get("/", h.List(profile.KindDoctor))
		dr.With(readers).Get("/{id}", h.GetByID(profile.KindDoctor))
		dr.With(admin).Delete("/{id}", h.Delete(profile.KindDoctor))
	})

	r.Route("/patients", func(pr chi.Router) {
		pr.Group(func(own chi.Router) {
			own.Use(rbac.RequireRoles(auth.RolePatient))
			own.Post("/profile", h.UpsertPatient)
			own.Get("/profile", h.GetOwn(profile.KindPatient))
			own.Put("/medical-info", h.UpdateMedicalInfo)
			own.Put("/emergency-contact", h.UpdateEmergencyContact)
		})
		readers := rbac.RequireRolesOrPermissions(
			[]string{auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse},
			[]string{auth.PermissionViewPatientRecords},
		)
		pr.With(readers).Get("/", h.List(profile.KindPatient))
		pr.With(readers).Get("/{id}", h.GetByID(profile.KindPatient))
		pr.With(admin).Delete("/{id}", h.Delete(profile.KindPatient))
	})

	r.Route("/nurses", func(nr chi.Router) {
		nr.Group(func(own chi.Router) {
			own.Use(rbac.RequireRoles(auth.RoleNurse))
			own.Post("/profile", h.UpsertNurse)
			own.Get("/profile", h.GetOwn(profile.KindNurse))
			own.Put("/shifts", h.UpdateShifts(profile.KindNurse))
		})
		readers := rbac.RequireRoles(auth.RoleAdmin, auth.RoleDoctor)
		nr.With(readers).Get("/", h.List(profile.KindNurse))
		nr.With(readers).Get("/{id}", h.GetByID(profile.KindNurse))
		nr.With(admin).Delete("/{id}", h.Delete(profile.KindNurse))
	})

	r.Route("/receptionists", func(rr chi.Router) {
		rr.Group(func(own chi.Router) {
			own.Use(rbac.RequireRoles(auth.RoleReceptionist))
			own.Post("/profile", h.UpsertReceptionist)
			own.Get("/profile", h.GetOwn(profile.KindReceptionist))
			own.Put("/shifts", h.UpdateShifts(profile.KindReceptionist))
		})
		rr.With(admin).Get("/", h.List(profile.KindReceptionist))
		rr.With(admin).Get("/{id}", h.GetByID(profile.KindReceptionist))
		rr.With(admin).Delete("/{id}", h.Delete(profile.KindReceptionist))
	})
}

func registerAppointmentRoutes(r chi.Router, h *appointment.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.With(rbac.RequireRoles(auth.RolePatient, auth.RoleReceptionist)).Post("/", h.CreateAppointment)
		ar.With(rbac.RequireRoles(auth.RoleAdmin, auth.RoleReceptionist)).Get("/", h.ListAppointments)
		ar.With(rbac.RequireRoles(auth.RoleDoctor)).Get("/doctor", h.ListDoctorAppointments)
		ar.With(rbac.RequireRoles(auth.RolePatient)).Get("/patient", h.ListPatientAppointments)
		ar.With(rbac.RequireRoles(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDoctor)).Put("/{id}/status", h.UpdateStatus)
		ar.With(rbac.RequireRoles(auth.RolePatient)).Put("/{id}/cancel", h.CancelAppointment)
		ar.With(rbac.RequireRoles(auth.RoleAdmin)).Delete("/{id}", h.DeleteAppointment)
	})
}
