package models

import "time"

// QueueEntry is a booked visit waiting for triage.
type QueueEntry struct {
	AppointmentID   int       `json:"appointment_id"`
	PatientID       int       `json:"patient_id"`
	PatientCode     string    `json:"patient_code"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          *string   `json:"reason,omitempty"`
}

type Dashboard struct {
	Queue      []QueueEntry `json:"queue"`
	QueueCount int          `json:"queue_count"`
}

// TriageRequest carries the vitals that move a visit from pending to ready.
type TriageRequest struct {
	Temp            float64 `json:"temp"`
	BP              string  `json:"bp"`
	Pulse           int     `json:"pulse"`
	RespiratoryRate int     `json:"respiratory_rate"`
}

type VitalsRequest struct {
	PatientID       int     `json:"patient_id"`
	Temperature     float64 `json:"temperature"`
	BP              string  `json:"bp"`
	Pulse           int     `json:"pulse"`
	Weight          float64 `json:"weight"`
	RespiratoryRate *int    `json:"respiratory_rate"`
	SpO2            *int    `json:"spo2"`
}

type Vitals struct {
	ID              int       `json:"id"`
	PatientID       int       `json:"patient_id"`
	RecordedBy      int       `json:"recorded_by"`
	Temperature     float64   `json:"temperature"`
	BP              string    `json:"bp"`
	Pulse           int       `json:"pulse"`
	Weight          float64   `json:"weight"`
	RespiratoryRate *int      `json:"respiratory_rate,omitempty"`
	SpO2            *int      `json:"spo2,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}
