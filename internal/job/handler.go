package job

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal/transport"
)

type ServiceAPI interface {
	ListOpen(ctx context.Context) ([]*Job, error)
	Create(ctx context.Context, dto CreateJobDTO) (*Job, error)
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

// ListJobs handles GET /jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Service.ListOpen(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, JobsResponse{Success: true, Jobs: jobs})
}

// CreateJob handles POST /jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var dto CreateJobDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	j, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, JobResponse{
		Success: true,
		Message: "Job position created successfully",
		Job:     j,
	})
}
