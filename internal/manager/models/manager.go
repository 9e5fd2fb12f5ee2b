package models

import (
	"time"

	cashier "github.com/c14220110/hms-backend/internal/cashier/models"
)

type RecentAppointment struct {
	ID              int       `json:"id"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	Status          string    `json:"status"`
}

type Dashboard struct {
	TotalUsers         int                 `json:"total_users"`
	TotalDoctors       int                 `json:"total_doctors"`
	TotalPatients      int                 `json:"total_patients"`
	TotalStaff         int                 `json:"total_staff"`
	TotalAppointments  int                 `json:"total_appointments"`
	TodayAppointments  int                 `json:"today_appointments"`
	OpenAppointments   int                 `json:"open_appointments"`
	TotalRevenue       float64             `json:"total_revenue"`
	MonthRevenue       float64             `json:"month_revenue"`
	PendingBills       float64             `json:"pending_bills"`
	RecentAppointments []RecentAppointment `json:"recent_appointments"`
	RecentPayments     []cashier.Payment   `json:"recent_payments"`
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type FinancialReport struct {
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	TotalRevenue float64               `json:"total_revenue"`
	ByMethod     []cashier.MethodTotal `json:"payment_methods"`
	Payments     []cashier.Payment     `json:"payments"`
	Bills        []cashier.Bill        `json:"bills"`
}

type Settings struct {
	HospitalName    string    `json:"hospital_name"`
	MaintenanceMode bool      `json:"maintenance_mode"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SettingsRequest leaves a field untouched when it is omitted.
type SettingsRequest struct {
	HospitalName    *string `json:"hospital_name"`
	MaintenanceMode *bool   `json:"maintenance_mode"`
}

type ActivityLog struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Username    string    `json:"username"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	Timestamp   time.Time `json:"timestamp"`
	ActionColor string    `json:"action_color"`
}

type Message struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	Response   *string   `json:"response,omitempty"`
	IsRead     bool      `json:"is_read"`
	IsResolved bool      `json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

type RespondRequest struct {
	Response string `json:"response"`
}

type StaffMember struct {
	ID          int       `json:"id"`
	StaffID     string    `json:"staff_id"`
	Department  string    `json:"department"`
	Position    string    `json:"position"`
	JoiningDate time.Time `json:"joining_date"`
}

type StaffDashboard struct {
	Name  string       `json:"name"`
	Staff *StaffMember `json:"staff"`
}
