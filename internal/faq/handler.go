package faq

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateFAQDTO) (*FAQ, error)
	List(ctx context.Context) ([]*FAQ, error)
	ListActiveByCategory(ctx context.Context, category string) ([]*FAQ, error)
	Get(ctx context.Context, id int64) (*FAQ, error)
	Update(ctx context.Context, id int64, dto UpdateFAQDTO) (*FAQ, error)
	Delete(ctx context.Context, id int64) error
}

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

// ListByCategory handles GET /faqs/category/{category}. Public.
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Service.ListActiveByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, FAQsResponse{Count: len(faqs), FAQs: faqs})
}

func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, FAQsResponse{Count: len(faqs), FAQs: faqs})
}

func (h *Handler) GetFAQ(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var dto CreateFAQDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	f, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	var dto UpdateFAQDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	f, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "FAQ deleted successfully"})
}
