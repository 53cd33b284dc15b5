package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Authority", func() {
	doctor := &User{ID: 2, Role: &Role{Name: RoleDoctor, Permissions: []string{"create_doctor_profile", "view_doctor_profile"}}}
	nurse := &User{ID: 3, Role: &Role{Name: RoleNurse, Permissions: []string{"create_nurse_profile"}}}
	admin := &User{ID: 1, Role: &Role{Name: RoleAdmin, Permissions: []string{"create_role"}}}
	roleless := &User{ID: 9}
	emptyRole := &User{ID: 10, Role: &Role{Name: RolePatient}}

	ginkgo.Describe("AuthorizeByRole", func() {
		ginkgo.It("should allow a listed role", func() {
			gomega.Expect(AuthorizeByRole(doctor, RoleAdmin, RoleDoctor)).To(gomega.BeNil())
		})

		ginkgo.It("should name the required roles and the caller's role on denial", func() {
			err := AuthorizeByRole(nurse, RoleAdmin, RoleDoctor)

			gomega.Expect(err).ToNot(gomega.BeNil())
			gomega.Expect(err.StatusCode).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeRoleNotPermitted))
			gomega.Expect(err.Message).To(gomega.Equal("Access denied. Required roles: admin, doctor. Your role: nurse"))
		})

		ginkgo.It("should deny a user without a role", func() {
			err := AuthorizeByRole(roleless, RoleAdmin)
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeNoRoleAssigned))
		})

		ginkgo.It("should report a missing principal as unauthenticated", func() {
			err := AuthorizeByRole(nil, RoleAdmin)
			gomega.Expect(errors.Is(err, internal.ErrMissingToken)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("AuthorizeByPermission", func() {
		ginkgo.It("should allow when any required permission is held", func() {
			gomega.Expect(AuthorizeByPermission(doctor, "view_doctor_profile", "delete_doctor_profile")).To(gomega.BeNil())
		})

		ginkgo.It("should list the required permissions on denial", func() {
			err := AuthorizeByPermission(nurse, "create_role", "update_role")

			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeInsufficientPermissions))
			gomega.Expect(err.Message).To(gomega.Equal("Access denied. Required permissions: create_role, update_role"))
		})

		ginkgo.It("should deny a role with an empty permission set", func() {
			err := AuthorizeByPermission(emptyRole, "create_role")
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeNoPermissionsAssigned))
		})

		ginkgo.It("should deny a roleless user", func() {
			err := AuthorizeByPermission(roleless, "create_role")
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeNoPermissionsAssigned))
		})
	})

	ginkgo.Describe("AuthorizeSelfOrElevated", func() {
		ginkgo.It("should allow the owner", func() {
			gomega.Expect(AuthorizeSelfOrElevated(nurse, 3, RoleAdmin)).To(gomega.BeNil())
		})

		ginkgo.It("should allow the elevated role on any target", func() {
			gomega.Expect(AuthorizeSelfOrElevated(admin, 3, RoleAdmin)).To(gomega.BeNil())
		})

		ginkgo.It("should deny anyone else", func() {
			err := AuthorizeSelfOrElevated(doctor, 3, RoleAdmin)
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeNotOwner))
		})
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var (
		rbac *RBACAuthorization
		ok   http.Handler
	)

	serve := func(mw func(http.Handler) http.Handler, u *User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(ContextWithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		mw(ok).ServeHTTP(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		rbac = NewRBACAuthorization(logger)
		ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	ginkgo.It("should answer 401 when no principal is attached", func() {
		rec := serve(rbac.RequireRoles(RoleAdmin), nil)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should pass an allowed role through", func() {
		rec := serve(rbac.RequireRoles(RoleAdmin), &User{ID: 1, Role: &Role{Name: RoleAdmin}})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should write the error envelope on denial", func() {
		rec := serve(rbac.RequirePermissions("create_role"), &User{ID: 2, Role: &Role{Name: RoleDoctor, Permissions: []string{"x"}}})

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"code":"INSUFFICIENT_PERMISSIONS"`))
	})

	ginkgo.It("should accept a permission when the role check fails", func() {
		u := &User{ID: 3, Role: &Role{Name: RoleNurse, Permissions: []string{"view_patients"}}}
		rec := serve(rbac.RequireRolesOrPermissions([]string{RoleAdmin}, []string{"view_patients"}), u)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should report the role denial when both checks fail", func() {
		u := &User{ID: 3, Role: &Role{Name: RoleNurse, Permissions: []string{"other"}}}
		rec := serve(rbac.RequireRolesOrPermissions([]string{RoleAdmin}, []string{"view_patients"}), u)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("ROLE_NOT_PERMITTED"))
	})

	ginkgo.It("should compare the caller with the URL user id", func() {
		r := chi.NewRouter()
		r.With(rbac.RequireSelfOrRole("id", RoleAdmin)).Get("/users/{id}", ok.ServeHTTP)

		do := func(path string, u *User) int {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req = req.WithContext(ContextWithUser(req.Context(), u))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			return rec.Code
		}

		self := &User{ID: 4, Role: &Role{Name: RolePatient}}
		gomega.Expect(do("/users/4", self)).To(gomega.Equal(http.StatusOK))
		gomega.Expect(do("/users/5", self)).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(do("/users/5", &User{ID: 1, Role: &Role{Name: RoleAdmin}})).To(gomega.Equal(http.StatusOK))
		gomega.Expect(do("/users/abc", self)).To(gomega.Equal(http.StatusBadRequest))
	})
})

var _ = ginkgo.Describe("OTPIssuer", func() {
	var issuer *OTPIssuer

	ginkgo.BeforeEach(func() {
		issuer = NewOTPIssuer("secret", time.Minute)
	})

	ginkgo.It("should verify its own challenge", func() {
		otp, hash, err := issuer.Issue("+628123")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(otp).To(gomega.HaveLen(6))
		gomega.Expect(strings.Count(hash, ".")).To(gomega.Equal(1))
		gomega.Expect(issuer.Verify(otp, hash, "+628123")).To(gomega.BeNil())
	})

	ginkgo.It("should bind the code to the phone", func() {
		otp, hash, _ := issuer.Issue("+628123")
		gomega.Expect(issuer.Verify(otp, hash, "+628999")).To(gomega.Equal(internal.ErrInvalidOTP))
	})

	ginkgo.It("should reject a tampered expiry", func() {
		otp, hash, _ := issuer.Issue("+628123")
		idx := strings.LastIndex(hash, ".")
		forged := hash[:idx] + ".99999999999999"

		gomega.Expect(issuer.Verify(otp, forged, "+628123")).To(gomega.Equal(internal.ErrInvalidOTP))
	})

	ginkgo.It("should expire after the ttl", func() {
		otp, hash, _ := issuer.Issue("+628123")
		issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		gomega.Expect(issuer.Verify(otp, hash, "+628123")).To(gomega.Equal(internal.ErrOTPExpired))
	})

	ginkgo.It("should reject a malformed hash", func() {
		gomega.Expect(issuer.Verify("123456", "nodot", "x")).To(gomega.Equal(internal.ErrInvalidOTP))
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var gen *JWTTokenGenerator

	ginkgo.BeforeEach(func() {
		gen = NewJWTTokenGenerator(testSecurity)
	})

	ginkgo.It("should round trip an access token", func() {
		token, err := gen.GenerateAccessToken(42, "a@b.c")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := gen.ValidateToken(token, TokenPurposeAccess)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
		gomega.Expect(claims.Email).To(gomega.Equal("a@b.c"))
	})

	ginkgo.It("should refuse a token presented for another purpose", func() {
		token, _ := gen.GenerateRefreshToken(42, "a@b.c")

		_, err := gen.ValidateToken(token, TokenPurposeAccess)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should refuse an expired token", func() {
		stale := NewJWTTokenGenerator(testSecurity)
		stale.AccessTokenTTL = -time.Minute
		expired, _ := stale.GenerateAccessToken(1, "a@b.c")

		_, err := gen.ValidateToken(expired, TokenPurposeAccess)
		gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
	})

	ginkgo.It("should refuse garbage", func() {
		_, err := gen.ValidateToken("not.a.jwt", TokenPurposeAccess)
		gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
	})
})
