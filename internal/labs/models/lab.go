package models

import "time"

type LabRequest struct {
	ID            int       `json:"id"`
	PatientID     *int      `json:"patient_id,omitempty"`
	PatientName   *string   `json:"patient_name,omitempty"`
	DoctorName    *string   `json:"doctor_name,omitempty"`
	AppointmentID *int      `json:"appointment_id,omitempty"`
	TestName      string    `json:"test_name"`
	Priority      string    `json:"priority"`
	ClinicalNotes *string   `json:"clinical_notes,omitempty"`
	Findings      *string   `json:"findings,omitempty"`
	Attachment    *string   `json:"attachment,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TestCount struct {
	TestName string `json:"test_name"`
	Count    int    `json:"count"`
}

type Dashboard struct {
	Queue             []LabRequest `json:"queue"`
	RecentCompletions []LabRequest `json:"recent_completions"`
	WaitingCount      int          `json:"waiting_count"`
	TotalMonthlyTests int          `json:"total_monthly_tests"`
	CurrentMonthName  string       `json:"current_month_name"`
	ChartLabels       []string     `json:"chart_labels"`
	ChartData         []int        `json:"chart_data"`
}

type ResultRequest struct {
	Findings   string `json:"findings"`
	Attachment string `json:"attachment"`
}

type Reagent struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stock_quantity"`
	MinThreshold  int       `json:"min_threshold"`
	LastRestocked time.Time `json:"last_restocked"`
	IsLow         bool      `json:"is_low"`
}

type ReagentRequest struct {
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
	MinThreshold  int    `json:"min_threshold"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}
