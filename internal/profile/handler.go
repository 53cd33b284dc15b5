package profile

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	"github.com/frahmantamala/hospital-management/internal/transport"
)

type ServiceAPI interface {
	Upsert(ctx context.Context, userID int64, input Input) (*UpsertResult, error)
	Resolve(ctx context.Context, userID int64) (*Record, error)
	ResolveOwn(ctx context.Context, userID int64, kind Kind) (*Record, error)
	ResolveByID(ctx context.Context, kind Kind, profileID int64) (*Detail, error)
	List(ctx context.Context, kind Kind) ([]*Record, error)
	Delete(ctx context.Context, kind Kind, profileID int64) error
	UpdateDoctorShift(ctx context.Context, userID int64, dto ShiftDTO) (*Record, error)
	ReplaceMedicalInfo(ctx context.Context, userID int64, dto MedicalInfoDTO) (*Record, error)
	ReplaceEmergencyInfo(ctx context.Context, userID int64, dto EmergencyContactDTO) (*Record, error)
	ReplaceShifts(ctx context.Context, userID int64, kind Kind, dto ShiftsDTO) (*Record, error)
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

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request, input Input) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Upsert(r.Context(), u.ID, input)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// UpsertDoctor handles POST /doctors/profile
func (h *Handler) UpsertDoctor(w http.ResponseWriter, r *http.Request) {
	var in DoctorInput
	if appErr := h.DecodeJSON(r, &in); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	in.Normalize()
	h.upsert(w, r, in)
}

// UpsertPatient handles POST /patients/profile
func (h *Handler) UpsertPatient(w http.ResponseWriter, r *http.Request) {
	var in PatientInput
	if appErr := h.DecodeJSON(r, &in); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	h.upsert(w, r, in)
}

// UpsertNurse handles POST /nurses/profile
func (h *Handler) UpsertNurse(w http.ResponseWriter, r *http.Request) {
	var in NurseInput
	if appErr := h.DecodeJSON(r, &in); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	in.Normalize()
	h.upsert(w, r, in)
}

// UpsertReceptionist handles POST /receptionists/profile
func (h *Handler) UpsertReceptionist(w http.ResponseWriter, r *http.Request) {
	var in ReceptionistInput
	if appErr := h.DecodeJSON(r, &in); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	in.Normalize()
	h.upsert(w, r, in)
}

// GetOwn serves the caller's own profile of the given kind.
func (h *Handler) GetOwn(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := h.caller(w, r)
		if !ok {
			return
		}

		rec, err := h.Service.ResolveOwn(r.Context(), u.ID, kind)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) List(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := h.Service.List(r.Context(), kind)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, ListResponse{Count: len(recs), Profiles: recs})
	}
}

// GetByID returns {profile, user}; user is null when nobody owns the record.
func (h *Handler) GetByID(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := h.PathID(r, "id")
		if appErr != nil {
			h.HandleServiceError(w, r, appErr)
			return
		}

		detail, err := h.Service.ResolveByID(r.Context(), kind, id)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, detail)
	}
}

func (h *Handler) Delete(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := h.PathID(r, "id")
		if appErr != nil {
			h.HandleServiceError(w, r, appErr)
			return
		}

		if err := h.Service.Delete(r.Context(), kind, id); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, map[string]string{"message": kind.Label() + " profile deleted successfully"})
	}
}

// UpdateDoctorShift handles PUT /doctors/shift
func (h *Handler) UpdateDoctorShift(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto ShiftDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	rec, err := h.Service.UpdateDoctorShift(r.Context(), u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Doctor shift updated successfully", Profile: rec})
}

// UpdateMedicalInfo handles PUT /patients/medical-info
func (h *Handler) UpdateMedicalInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto MedicalInfoDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	rec, err := h.Service.ReplaceMedicalInfo(r.Context(), u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Medical information updated successfully", Profile: rec})
}

// UpdateEmergencyContact handles PUT /patients/emergency-contact
func (h *Handler) UpdateEmergencyContact(w http.ResponseWriter, r *http.Request) {
	u, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto EmergencyContactDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	rec, err := h.Service.ReplaceEmergencyInfo(r.Context(), u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Emergency contact updated successfully", Profile: rec})
}

// UpdateShifts handles PUT /nurses/shifts and PUT /receptionists/shifts.
func (h *Handler) UpdateShifts(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := h.caller(w, r)
		if !ok {
			return
		}

		var dto ShiftsDTO
		if appErr := h.DecodeJSON(r, &dto); appErr != nil {
			h.HandleServiceError(w, r, appErr)
			return
		}

		rec, err := h.Service.ReplaceShifts(r.Context(), u.ID, kind, dto)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, MessageResponse{Message: kind.Label() + " shifts updated successfully", Profile: rec})
	}
}
