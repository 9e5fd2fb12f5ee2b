package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/patients/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrDoctorNotFound  = errors.New("selected doctor is not available")
	ErrPastDate        = errors.New("appointment date cannot be in the past")
	ErrInvalidSchedule = errors.New("appointment_date must be YYYY-MM-DD and appointment_time HH:MM")
	ErrPatientNotFound = errors.New("patient not found")
)

type PatientService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
	now    func() time.Time
}

func NewPatientService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *PatientService {
	return &PatientService{DB: db, Events: pub, Log: log, now: time.Now}
}

// EnsurePatient returns the patient row of a user, creating one on first use.
func (s *PatientService) EnsurePatient(ctx context.Context, userID int) (*models.Patient, error) {
	p, err := s.loadPatient(ctx, userID)
	if !errors.Is(err, ErrPatientNotFound) {
		return p, err
	}
	if _, err := s.DB.ExecContext(ctx,
		`INSERT IGNORE INTO patients (user_id, patient_id) VALUES (?, ?)`,
		userID, utils.FallbackPatientCode(userID)); err != nil {
		return nil, fmt.Errorf("create patient profile: %w", err)
	}
	s.Log.Info().Int("user_id", userID).Msg("patient profile created")
	return s.loadPatient(ctx, userID)
}

func (s *PatientService) loadPatient(ctx context.Context, userID int) (*models.Patient, error) {
	var p models.Patient
	err := s.DB.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.patient_id, CONCAT(u.first_name, ' ', u.last_name), p.blood_group,
		        p.height, p.weight, p.allergies, p.emergency_contact_number, p.is_admitted
		 FROM patients p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ?`, userID).
		Scan(&p.ID, &p.UserID, &p.PatientID, &p.Name, &p.BloodGroup, &p.Height, &p.Weight,
			&p.Allergies, &p.EmergencyContactNumber, &p.IsAdmitted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	return &p, nil
}

func (s *PatientService) Dashboard(ctx context.Context, userID int) (*models.Dashboard, error) {
	p, err := s.EnsurePatient(ctx, userID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments(ctx, p.ID, 5)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, p.ID, 5)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{Patient: *p, RecentAppointments: appts, RecentRecords: records}, nil
}

// BookAppointment opens a pending visit with an active doctor.
func (s *PatientService) BookAppointment(ctx context.Context, userID int, req models.BookAppointmentRequest) (*models.Appointment, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidSchedule
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, ErrInvalidSchedule
	}
	y, m, d := s.now().Date()
	if date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return nil, ErrPastDate
	}

	p, err := s.EnsurePatient(ctx, userID)
	if err != nil {
		return nil, err
	}

	var doctorName string
	err = s.DB.QueryRowContext(ctx,
		`SELECT CONCAT(first_name, ' ', last_name) FROM users WHERE id = ? AND role = ? AND is_active = 1`,
		req.DoctorID, cmodels.RoleDoctor).Scan(&doctorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup doctor: %w", err)
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, reason, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, req.DoctorID, req.Date, req.Time, req.Reason, string(cmodels.VisitPending))
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID: int(id), PatientID: p.ID, PatientName: p.Name, DoctorID: req.DoctorID, DoctorName: doctorName,
		AppointmentDate: date, AppointmentTime: req.Time, Reason: &req.Reason,
		Status: string(cmodels.VisitPending), CreatedAt: s.now().UTC(),
	}
	s.Events.Publish(ctx, events.New(events.VisitStatusChanged, map[string]interface{}{
		"appointment_id": appt.ID, "from": nil, "to": appt.Status,
	}))
	s.Log.Info().Int("appointment_id", appt.ID).Int("doctor_id", req.DoctorID).Msg("appointment booked")
	return appt, nil
}

func (s *PatientService) Appointments(ctx context.Context, userID int) ([]models.Appointment, error) {
	p, err := s.EnsurePatient(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.appointments(ctx, p.ID, 0)
}

func (s *PatientService) MedicalRecords(ctx context.Context, userID int) ([]models.MedicalRecord, error) {
	p, err := s.EnsurePatient(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, p.ID, 0)
}

func (s *PatientService) appointments(ctx context.Context, patientID, limit int) ([]models.Appointment, error) {
	query := `SELECT a.id, a.patient_id, a.doctor_id, CONCAT(u.first_name, ' ', u.last_name),
	                 a.appointment_date, a.appointment_time, a.reason, a.status, a.notes, a.created_at
	          FROM appointments a JOIN users u ON u.id = a.doctor_id
	          WHERE a.patient_id = ?
	          ORDER BY a.appointment_date DESC, a.appointment_time DESC`
	args := []interface{}{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.AppointmentDate,
			&a.AppointmentTime, &a.Reason, &a.Status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PatientService) records(ctx context.Context, patientID, limit int) ([]models.MedicalRecord, error) {
	query := `SELECT r.id, r.patient_id, CONCAT(u.first_name, ' ', u.last_name), r.appointment_id, r.diagnosis,
	                 r.clinical_notes, r.prescribed_medicines, r.ordered_tests, r.requires_admission, r.visit_date
	          FROM medical_records r LEFT JOIN users u ON u.id = r.doctor_id
	          WHERE r.patient_id = ?
	          ORDER BY r.visit_date DESC`
	args := []interface{}{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	out := []models.MedicalRecord{}
	for rows.Next() {
		var r models.MedicalRecord
		if err := rows.Scan(&r.ID, &r.PatientID, &r.DoctorName, &r.AppointmentID, &r.Diagnosis,
			&r.ClinicalNotes, &r.PrescribedMedicines, &r.OrderedTests, &r.RequiresAdmission, &r.VisitDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
