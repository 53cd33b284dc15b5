package auth

import (
	"net/http"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/frahmantamala/hospital-management/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Register handles POST /auth/register. An admin or receptionist bearer token
// is honoured when present.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	actor, _ := UserFromContext(r.Context())

	result, err := h.Service.Register(r.Context(), dto, actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	challenge, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("login failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, challenge)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var dto VerifyOTPDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	resp, err := h.Service.VerifyLoginOTP(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// VerifyEmail handles GET /auth/verify/{token}
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.VerifyEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "User verified successfully!"})
}

// Logout is stateless: tokens are not revoked server side, the endpoint only
// confirms the presented token is valid.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authenticate(r *http.Request) (*User, error) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		return nil, internal.ErrMissingToken
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	principal, err := h.Service.GetPrincipal(r.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}

	if !principal.Verified {
		return nil, internal.ErrEmailNotVerified
	}

	return principal, nil
}

func (h *Handler) withPrincipal(r *http.Request, principal *User) *http.Request {
	ctx := ContextWithUser(r.Context(), principal)
	ctx = internal.ContextWithUserID(ctx, principal.ID)
	ctx = logger.WithUser(ctx, principal.ID, principal.RoleName())
	return r.WithContext(ctx)
}

// AuthMiddleware requires a valid access token for a verified user and
// attaches the principal, with role and permission names, to the context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.authenticate(r)
		if err != nil {
			h.Logger.Debug("auth middleware: request rejected", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, h.withPrincipal(r, principal))
	})
}

// OptionalAuthMiddleware attaches the principal when a usable token is sent
// and otherwise lets the request continue anonymously.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ExtractTokenFromHeader(r) == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := h.authenticate(r)
		if err != nil {
			h.Logger.Debug("optional auth: ignoring unusable token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, h.withPrincipal(r, principal))
	})
}
