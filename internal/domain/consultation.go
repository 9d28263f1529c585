package domain

import "time"

// Consultation statuses
const (
	ConsultationBooked    = "Booked"
	ConsultationCompleted = "Completed"
	ConsultationCancelled = "Cancelled"
)

// Consultation 预约记录（teleconsultation / in-person booking）
type Consultation struct {
	ConsultationID string    `json:"consultation_id"`
	PatientID      string    `json:"patient_id"`
	AdminID        string    `json:"admin_id"`
	Type           string    `json:"consultation_type"` // "Teleconsultation" / "In-Person"
	ScheduledAt    time.Time `json:"consultation_datetime"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
