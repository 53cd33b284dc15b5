package stats

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestStats(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Stats Suite")
}

type MockRepository struct {
	byRole     []Count
	byKind     []Count
	byStatus   []Count
	today      int64
	from, to   time.Time
	shouldFail bool
}

func (m *MockRepository) UsersByRole(ctx context.Context) ([]Count, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.byRole, nil
}

func (m *MockRepository) ProfilesByKind(ctx context.Context) ([]Count, error) {
	return m.byKind, nil
}

func (m *MockRepository) AppointmentsByStatus(ctx context.Context) ([]Count, error) {
	return m.byStatus, nil
}

func (m *MockRepository) AppointmentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	m.from, m.to = from, to
	return m.today, nil
}

var _ = ginkgo.Describe("Stats Service", func() {
	var (
		repo    *MockRepository
		service *Service
	)

	ginkgo.BeforeEach(func() {
		repo = &MockRepository{
			byRole:   []Count{{Label: "patient", Total: 7}, {Label: "doctor", Total: 2}, {Label: "nurse", Total: 3}},
			byKind:   []Count{{Label: "Doctor", Total: 2}},
			byStatus: []Count{{Label: "Pending", Total: 4}},
			today:    1,
		}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, slogger)
		service.now = func() time.Time { return time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC) }
	})

	ginkgo.It("should fold the counts into an overview", func() {
		o, err := service.Overview(context.Background())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(o.Patients).To(gomega.Equal(int64(7)))
		gomega.Expect(o.MedicalStaff).To(gomega.Equal(int64(5)))
		gomega.Expect(o.ProfilesByKind).To(gomega.HaveKeyWithValue("Doctor", int64(2)))
		gomega.Expect(o.AppointmentsByStatus).To(gomega.HaveKeyWithValue("Pending", int64(4)))
		gomega.Expect(o.AppointmentsToday).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should count today's appointments over the whole UTC day", func() {
		_, err := service.Overview(context.Background())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(repo.from).To(gomega.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
		gomega.Expect(repo.to).To(gomega.Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	})

	ginkgo.It("should hide storage failures behind an internal error", func() {
		repo.shouldFail = true

		_, err := service.Overview(context.Background())
		appErr, ok := internal.IsAppError(err)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
	})

	ginkgo.It("should serve the overview over HTTP", func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		h := NewHandler(transport.NewBaseHandler(slogger), service)

		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"medicalStaff":5`))
	})
})
