package appointment_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/appointment"
	appointmentPostgres "github.com/frahmantamala/hospital-management/internal/appointment/postgres"
	"github.com/frahmantamala/hospital-management/internal/auth"
	appointmentDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/appointment"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAppointment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Appointment Suite")
}

type fixture struct {
	db           *gorm.DB
	roles        map[string]int64
	doctor       *userDatamodel.User
	patient      *userDatamodel.User
	otherPatient *userDatamodel.User
}

func newFixture() *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(db.AutoMigrate(
		&permissionDatamodel.Permission{},
		&roleDatamodel.Role{},
		&userDatamodel.User{},
		&profileDatamodel.DoctorProfile{},
		&appointmentDatamodel.Appointment{},
	)).To(Succeed())

	f := &fixture{db: db, roles: map[string]int64{}}
	for _, name := range []string{auth.RoleDoctor, auth.RolePatient, auth.RoleReceptionist} {
		r := &roleDatamodel.Role{Name: name}
		Expect(db.Create(r).Error).To(Succeed())
		f.roles[name] = r.ID
	}

	f.doctor = f.user("house@example.com", auth.RoleDoctor)
	f.patient = f.user("pat@example.com", auth.RolePatient)
	f.otherPatient = f.user("other@example.com", auth.RolePatient)
	return f
}

func (f *fixture) user(email, role string) *userDatamodel.User {
	roleID := f.roles[role]
	u := &userDatamodel.User{Email: email, Name: strings.Split(email, "@")[0], Gender: "male", PasswordHash: "x", IsVerified: true, RoleID: &roleID}
	Expect(f.db.Create(u).Error).To(Succeed())
	return u
}

func principal(u *userDatamodel.User, role string) *auth.User {
	return &auth.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: &auth.Role{Name: role}}
}

var _ = Describe("Appointment Service", func() {
	var (
		f       *fixture
		service *appointment.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = appointment.NewService(appointmentPostgres.NewAppointmentRepository(f.db), slogger)
	})

	book := func(actor *auth.User, date string, patientID *int64) *appointment.Appointment {
		dto := appointment.CreateAppointmentDTO{DoctorID: f.doctor.ID, PatientID: patientID, Date: date}
		dto.Normalize()
		a, err := service.Create(ctx, actor, dto)
		Expect(err).NotTo(HaveOccurred())
		return a
	}

	Describe("Create", func() {
		It("should book a patient for themselves regardless of patientId", func() {
			other := f.otherPatient.ID
			a := book(principal(f.patient, auth.RolePatient), "2030-01-02", &other)

			Expect(a.Patient.ID).To(Equal(f.patient.ID))
			Expect(a.Doctor.Email).To(Equal("house@example.com"))
			Expect(a.Status).To(Equal(appointment.StatusPending))
			Expect(a.Type).To(Equal(appointment.TypeConsultation))
			Expect(a.Date).To(BeTemporally("==", time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)))
		})

		It("should require patientId from a receptionist", func() {
			clerk := principal(f.user("desk@example.com", auth.RoleReceptionist), auth.RoleReceptionist)
			dto := appointment.CreateAppointmentDTO{DoctorID: f.doctor.ID, Date: "2030-01-02"}
			dto.Normalize()

			_, err := service.Create(ctx, clerk, dto)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))

			pid := f.patient.ID
			a := book(clerk, "2030-01-02", &pid)
			Expect(a.Patient.ID).To(Equal(f.patient.ID))
		})

		It("should reject a doctor id that is not a doctor", func() {
			dto := appointment.CreateAppointmentDTO{DoctorID: f.otherPatient.ID, Date: "2030-01-02"}
			dto.Normalize()

			_, err := service.Create(ctx, principal(f.patient, auth.RolePatient), dto)
			Expect(errors.Is(err, internal.ErrDoctorNotFound)).To(BeTrue())

			dto.DoctorID = 999
			_, err = service.Create(ctx, principal(f.patient, auth.RolePatient), dto)
			Expect(errors.Is(err, internal.ErrDoctorNotFound)).To(BeTrue())
		})

		It("should reject an unknown type", func() {
			dto := appointment.CreateAppointmentDTO{DoctorID: f.doctor.ID, Date: "2030-01-02", Type: "Surgery"}
			_, err := service.Create(ctx, principal(f.patient, auth.RolePatient), dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("listing", func() {
		It("should return newest first and scope by side", func() {
			me := principal(f.patient, auth.RolePatient)
			book(me, "2030-01-01", nil)
			book(me, "2030-03-01", nil)
			book(principal(f.otherPatient, auth.RolePatient), "2030-02-01", nil)

			all, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Date.Month()).To(Equal(time.March))
			Expect(all[2].Date.Month()).To(Equal(time.January))

			mine, err := service.ListForPatient(ctx, f.patient.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))

			doctors, err := service.ListForDoctor(ctx, f.doctor.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(doctors).To(HaveLen(3))
		})

		It("should attach doctor details for patients", func() {
			book(principal(f.patient, auth.RolePatient), "2030-01-01", nil)

			mine, err := service.ListForPatient(ctx, f.patient.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine[0].DoctorDetails.Specialization).To(Equal("General"))

			p := &profileDatamodel.DoctorProfile{Specialization: "Cardiology", LicenseNumber: "L1", ShiftDay: "Monday", ShiftStartTime: "09:00", ShiftEndTime: "17:00"}
			Expect(f.db.Create(p).Error).To(Succeed())
			Expect(f.db.Model(f.doctor).Updates(map[string]interface{}{"profile_id": p.ID, "profile_model": "Doctor"}).Error).To(Succeed())

			mine, err = service.ListForPatient(ctx, f.patient.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine[0].DoctorDetails.Specialization).To(Equal("Cardiology"))
		})
	})

	Describe("UpdateStatus", func() {
		It("should change the status", func() {
			a := book(principal(f.patient, auth.RolePatient), "2030-01-01", nil)

			updated, err := service.UpdateStatus(ctx, a.ID, appointment.StatusConfirmed)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(appointment.StatusConfirmed))
		})

		It("should reject an unknown status", func() {
			a := book(principal(f.patient, auth.RolePatient), "2030-01-01", nil)

			_, err := service.UpdateStatus(ctx, a.ID, "Done")
			Expect(errors.Is(err, internal.ErrInvalidStatus)).To(BeTrue())
		})

		It("should fail for an unknown id", func() {
			_, err := service.UpdateStatus(ctx, 404, appointment.StatusConfirmed)
			Expect(errors.Is(err, internal.ErrAppointmentNotFound)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		It("should let a patient cancel their own appointment only", func() {
			a := book(principal(f.patient, auth.RolePatient), "2030-01-01", nil)

			_, err := service.Cancel(ctx, principal(f.otherPatient, auth.RolePatient), a.ID)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))

			cancelled, err := service.Cancel(ctx, principal(f.patient, auth.RolePatient), a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(appointment.StatusCancelled))
		})
	})

	Describe("Delete", func() {
		It("should remove the appointment", func() {
			a := book(principal(f.patient, auth.RolePatient), "2030-01-01", nil)

			Expect(service.Delete(ctx, a.ID)).To(Succeed())
			Expect(errors.Is(service.Delete(ctx, a.ID), internal.ErrAppointmentNotFound)).To(BeTrue())
		})
	})
})

var _ = Describe("Appointment Handler", func() {
	var (
		f      *fixture
		router chi.Router
		caller *auth.User
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if caller != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), caller))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		f = newFixture()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := appointment.NewHandler(transport.NewBaseHandler(slogger),
			appointment.NewService(appointmentPostgres.NewAppointmentRepository(f.db), slogger))

		router = chi.NewRouter()
		router.Post("/appointments", handler.CreateAppointment)
		router.Get("/appointments/patient", handler.ListPatientAppointments)
		router.Put("/appointments/{id}/status", handler.UpdateStatus)
		router.Delete("/appointments/{id}", handler.DeleteAppointment)

		caller = principal(f.patient, auth.RolePatient)
	})

	It("should create and list the caller's appointments", func() {
		body := `{"doctorId":` + strconv.FormatInt(f.doctor.ID, 10) + `,"date":"2030-05-05","type":"Follow-up"}`
		rec := do(http.MethodPost, "/appointments", body)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring("Appointment created successfully"))

		rec = do(http.MethodGet, "/appointments/patient", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"type":"Follow-up"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"doctorDetails"`))
	})

	It("should answer 400 for an invalid status and 404 for an unknown id", func() {
		rec := do(http.MethodPut, "/appointments/1/status", `{"status":"Nope"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodPut, "/appointments/1/status", `{"status":"Confirmed"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		rec = do(http.MethodDelete, "/appointments/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
