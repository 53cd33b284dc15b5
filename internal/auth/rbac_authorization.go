package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/metrics"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
)

// RBACAuthorization builds route gates on top of the principal that
// AuthMiddleware placed in the request context.
type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

type decision func(u *User, r *http.Request) *internal.AppError

func (ra *RBACAuthorization) gate(name string, decide decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context", "gate", name)
				metrics.RecordDecision(name, false, string(internal.ErrCodeMissingToken))
				ra.WriteAppError(w, internal.ErrMissingToken)
				return
			}

			if appErr := decide(user, r); appErr != nil {
				ra.logger.WarnContext(r.Context(), "access denied",
					"gate", name,
					"user_id", user.ID,
					"role", user.RoleName(),
					"reason", appErr.Code)
				metrics.RecordDecision(name, false, string(appErr.Code))
				ra.WriteAppError(w, appErr)
				return
			}

			metrics.RecordDecision(name, true, "")
			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return ra.gate("role", func(u *User, _ *http.Request) *internal.AppError {
		return AuthorizeByRole(u, roles...)
	})
}

func (ra *RBACAuthorization) RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return ra.gate("permission", func(u *User, _ *http.Request) *internal.AppError {
		return AuthorizeByPermission(u, permissions...)
	})
}

// RequireRolesOrPermissions passes when either check passes. When both deny,
// the role denial is reported.
func (ra *RBACAuthorization) RequireRolesOrPermissions(roles []string, permissions []string) func(http.Handler) http.Handler {
	return ra.gate("role_or_permission", func(u *User, _ *http.Request) *internal.AppError {
		roleErr := AuthorizeByRole(u, roles...)
		if roleErr == nil {
			return nil
		}
		if AuthorizeByPermission(u, permissions...) == nil {
			return nil
		}
		return roleErr
	})
}

// RequireSelfOrRole compares the caller with the user id in URL parameter param.
func (ra *RBACAuthorization) RequireSelfOrRole(param string, elevatedRole string) func(http.Handler) http.Handler {
	return ra.gate("self_or_role", func(u *User, r *http.Request) *internal.AppError {
		target, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
		if err != nil || target <= 0 {
			return internal.ErrInvalidID
		}
		return AuthorizeSelfOrElevated(u, target, elevatedRole)
	})
}
