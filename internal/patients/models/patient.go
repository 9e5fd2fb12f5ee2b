package models

import "time"

type Patient struct {
	ID                     int      `json:"id"`
	UserID                 int      `json:"user_id"`
	PatientID              string   `json:"patient_id"`
	Name                   string   `json:"name"`
	BloodGroup             *string  `json:"blood_group,omitempty"`
	Height                 *float64 `json:"height,omitempty"`
	Weight                 *float64 `json:"weight,omitempty"`
	Allergies              *string  `json:"allergies,omitempty"`
	EmergencyContactNumber *string  `json:"emergency_contact_number,omitempty"`
	IsAdmitted             bool     `json:"is_admitted"`
}

type Appointment struct {
	ID              int       `json:"id"`
	PatientID       int       `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	DoctorID        int       `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          *string   `json:"reason,omitempty"`
	Status          string    `json:"status"`
	Temp            *float64  `json:"temp,omitempty"`
	BP              *string   `json:"bp,omitempty"`
	Pulse           *int      `json:"pulse,omitempty"`
	RespiratoryRate *int      `json:"respiratory_rate,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type MedicalRecord struct {
	ID                  int       `json:"id"`
	PatientID           int       `json:"patient_id"`
	DoctorName          *string   `json:"doctor_name,omitempty"`
	AppointmentID       *int      `json:"appointment_id,omitempty"`
	Diagnosis           string    `json:"diagnosis"`
	ClinicalNotes       *string   `json:"clinical_notes,omitempty"`
	PrescribedMedicines *string   `json:"prescribed_medicines,omitempty"`
	OrderedTests        *string   `json:"ordered_tests,omitempty"`
	RequiresAdmission   bool      `json:"requires_admission"`
	VisitDate           time.Time `json:"visit_date"`
}

type Dashboard struct {
	Patient            Patient         `json:"patient"`
	RecentAppointments []Appointment   `json:"recent_appointments"`
	RecentRecords      []MedicalRecord `json:"recent_records"`
}

type BookAppointmentRequest struct {
	DoctorID int    `json:"doctor_id"`
	Date     string `json:"appointment_date"` // YYYY-MM-DD
	Time     string `json:"appointment_time"` // HH:MM
	Reason   string `json:"reason"`
}
