package stats

import "time"

// Count is one row of a GROUP BY count.
type Count struct {
	Label string `db:"label"`
	Total int64  `db:"total"`
}

type Overview struct {
	Patients             int64            `json:"patients"`
	MedicalStaff         int64            `json:"medicalStaff"`
	AppointmentsToday    int64            `json:"appointmentsToday"`
	UsersByRole          map[string]int64 `json:"usersByRole"`
	ProfilesByKind       map[string]int64 `json:"profilesByKind"`
	AppointmentsByStatus map[string]int64 `json:"appointmentsByStatus"`
	GeneratedAt          time.Time        `json:"generatedAt"`
}

func toMap(counts []Count) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for _, c := range counts {
		out[c.Label] = c.Total
	}
	return out
}
