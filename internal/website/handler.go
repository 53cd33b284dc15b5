package website

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal/transport"
)

type ServiceAPI interface {
	SubmitContactMessage(ctx context.Context, dto ContactMessageDTO) (*Message, error)
	Subscribe(ctx context.Context, dto SubscribeDTO) error
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

// SubmitContact handles POST /web/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var dto ContactMessageDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	msg, err := h.Service.SubmitContactMessage(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ContactResponse{
		Success: true,
		Message: "Message sent successfully!",
		Data:    msg,
	})
}

// Subscribe handles POST /web/subscribe
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var dto SubscribeDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	if err := h.Service.Subscribe(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SubscribeResponse{
		Success: true,
		Message: "Successfully subscribed to the newsletter!",
	})
}
