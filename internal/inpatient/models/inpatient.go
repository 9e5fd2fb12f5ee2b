package models

import "time"

type Ward struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	RatePerNight float64 `json:"rate_per_night"`
	TotalBeds    int     `json:"total_beds"`
	Occupied     int     `json:"occupied"`
}

type WardRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	RatePerNight float64 `json:"rate_per_night"`
	TotalBeds    int     `json:"total_beds"`
}

type AdmitRequest struct {
	PatientID int    `json:"patient_id"`
	WardID    int    `json:"ward_id"`
	BedNumber string `json:"bed_number"`
	Reason    string `json:"reason"`
}

type Admission struct {
	ID          int       `json:"id"`
	PatientID   int       `json:"patient_id"`
	PatientCode string    `json:"patient_code"`
	PatientName string    `json:"patient_name"`
	WardID      int       `json:"ward_id"`
	WardName    string    `json:"ward_name"`
	BedNumber   string    `json:"bed_number"`
	Reason      string    `json:"reason"`
	AdmittedAt  time.Time `json:"admitted_at"`
	DaysSpent   int       `json:"days_spent"`
	RunningBill float64   `json:"running_bill"`
}

type Dashboard struct {
	Admissions    []Admission `json:"admissions"`
	TotalOccupied int         `json:"total_occupied"`
}

type VitalsRequest struct {
	Temperature   float64 `json:"temperature"`
	BloodPressure string  `json:"blood_pressure"`
	PulseRate     int     `json:"pulse_rate"`
	Notes         string  `json:"notes"`
}

type VitalSign struct {
	ID            int       `json:"id"`
	AdmissionID   int       `json:"admission_id"`
	NurseID       int       `json:"nurse_id"`
	Temperature   float64   `json:"temperature"`
	BloodPressure string    `json:"blood_pressure"`
	PulseRate     int       `json:"pulse_rate"`
	Notes         string    `json:"notes,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type DischargeResult struct {
	AdmissionID  int       `json:"admission_id"`
	PatientName  string    `json:"patient_name"`
	DischargedAt time.Time `json:"discharged_at"`
	DaysSpent    int       `json:"days_spent"`
	TotalCost    float64   `json:"total_cost"`
	BillID       int       `json:"bill_id"`
	BillNumber   string    `json:"bill_number"`
}
