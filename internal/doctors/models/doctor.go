package models

import (
	pmodels "github.com/c14220110/hms-backend/internal/patients/models"
)

type Doctor struct {
	ID              int     `json:"id"`
	UserID          int     `json:"user_id"`
	DoctorID        string  `json:"doctor_id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	LicenseNumber   string  `json:"license_number"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
}

type PatientSummary struct {
	ID          int    `json:"id"`
	PatientCode string `json:"patient_code"`
	Name        string `json:"name"`
	LastVisit   string `json:"last_visit"`
}

type Dashboard struct {
	Doctor                Doctor                `json:"doctor"`
	TodayAppointments     []pmodels.Appointment `json:"today_appointments"`
	UpcomingAppointments  []pmodels.Appointment `json:"upcoming_appointments"`
	RecentPatients        []PatientSummary      `json:"recent_patients"`
	TotalAppointments     int                   `json:"total_appointments"`
	CompletedAppointments int                   `json:"completed_appointments"`
}

type PatientDetail struct {
	Patient        pmodels.Patient         `json:"patient"`
	Appointments   []pmodels.Appointment   `json:"appointments"`
	MedicalRecords []pmodels.MedicalRecord `json:"medical_records"`
}

type LabOrder struct {
	TestName      string `json:"test_name"`
	Priority      string `json:"priority"`
	ClinicalNotes string `json:"clinical_notes"`
}

type PrescriptionOrder struct {
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	Quantity       int    `json:"quantity"`
}

type ConsultationRequest struct {
	Diagnosis         string              `json:"diagnosis"`
	ClinicalNotes     string              `json:"clinical_notes"`
	LabTests          []LabOrder          `json:"lab_tests"`
	Prescriptions     []PrescriptionOrder `json:"prescriptions"`
	RequiresAdmission bool                `json:"requires_admission"`
}

type ConsultationResult struct {
	AppointmentID    int     `json:"appointment_id"`
	MedicalRecordID  int     `json:"medical_record_id"`
	LabRequestIDs    []int   `json:"lab_request_ids"`
	PrescriptionIDs  []int   `json:"prescription_ids"`
	BillID           *int    `json:"bill_id,omitempty"`
	BillNumber       *string `json:"bill_number,omitempty"`
	Status           string  `json:"status"`
	PrescriptionCost float64 `json:"prescription_cost"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type MedicalRecordRequest struct {
	PatientID           int    `json:"patient_id"`
	Diagnosis           string `json:"diagnosis"`
	ClinicalNotes       string `json:"clinical_notes"`
	PrescribedMedicines string `json:"prescribed_medicines"`
	OrderedTests        string `json:"ordered_tests"`
	RequiresAdmission   bool   `json:"requires_admission"`
}
