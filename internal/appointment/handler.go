package appointment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	"github.com/frahmantamala/hospital-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *auth.User, dto CreateAppointmentDTO) (*Appointment, error)
	ListAll(ctx context.Context) ([]*Appointment, error)
	ListForDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error)
	ListForPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Appointment, error)
	Cancel(ctx context.Context, actor *auth.User, id int64) (*Appointment, error)
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

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return nil, false
	}
	return u, true
}

// CreateAppointment handles POST /appointments
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto CreateAppointmentDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	dto.Normalize()

	a, err := h.Service.Create(r.Context(), u, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, AppointmentResponse{Message: "Appointment created successfully", Appointment: a})
}

// ListAppointments handles GET /appointments
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppointmentsResponse{Appointments: list})
}

// ListDoctorAppointments handles GET /appointments/doctor
func (h *Handler) ListDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	list, err := h.Service.ListForDoctor(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppointmentsResponse{Appointments: list})
}

// ListPatientAppointments handles GET /appointments/patient
func (h *Handler) ListPatientAppointments(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	list, err := h.Service.ListForPatient(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppointmentsResponse{Appointments: list})
}

// UpdateStatus handles PUT /appointments/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	var dto UpdateStatusDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	a, err := h.Service.UpdateStatus(r.Context(), id, dto.Status)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AppointmentResponse{Message: "Appointment status updated", Appointment: a})
}

// CancelAppointment handles PUT /appointments/{id}/cancel
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	a, err := h.Service.Cancel(r.Context(), u, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AppointmentResponse{Message: "Appointment cancelled successfully", Appointment: a})
}

// DeleteAppointment handles DELETE /appointments/{id}
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}
