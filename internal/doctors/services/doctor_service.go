package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/doctors/models"
	pmodels "github.com/c14220110/hms-backend/internal/patients/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNotYourVisit    = errors.New("appointment belongs to another doctor")
	ErrDiagnosisNeeded = errors.New("diagnosis is required")
	ErrInvalidOrder    = errors.New("invalid lab or prescription order")
)

// DefaultConsultationFee applies to doctor profiles created on first login.
const DefaultConsultationFee = 500.00

type DoctorService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
}

func NewDoctorService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *DoctorService {
	return &DoctorService{DB: db, Events: pub, Log: log}
}

const appointmentColumns = `a.id, a.patient_id, CONCAT(pu.first_name, ' ', pu.last_name), a.doctor_id,
	a.appointment_date, a.appointment_time, a.reason, a.status, a.temp, a.bp, a.pulse, a.respiratory_rate,
	a.notes, a.created_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id`

// EnsureDoctor returns the doctor's profile, creating a default one on first use.
func (s *DoctorService) EnsureDoctor(ctx context.Context, userID int) (*models.Doctor, error) {
	d, err := s.loadDoctor(ctx, userID)
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return d, err
	}
	if _, err := s.DB.ExecContext(ctx,
		`INSERT IGNORE INTO doctors (user_id, doctor_id, specialization, license_number, qualification, consultation_fee)
		 VALUES (?, ?, 'general', ?, 'MBBS', ?)`,
		userID, utils.DoctorCode(userID), utils.LicenseCode(userID), DefaultConsultationFee); err != nil {
		return nil, fmt.Errorf("create doctor profile: %w", err)
	}
	s.Log.Info().Int("user_id", userID).Msg("doctor profile created")
	return s.loadDoctor(ctx, userID)
}

func (s *DoctorService) loadDoctor(ctx context.Context, userID int) (*models.Doctor, error) {
	var d models.Doctor
	err := s.DB.QueryRowContext(ctx,
		`SELECT d.id, d.user_id, d.doctor_id, CONCAT(u.first_name, ' ', u.last_name), d.specialization,
		        d.license_number, d.qualification, d.experience_years, d.consultation_fee
		 FROM doctors d JOIN users u ON u.id = d.user_id
		 WHERE d.user_id = ?`, userID).
		Scan(&d.ID, &d.UserID, &d.DoctorID, &d.Name, &d.Specialization, &d.LicenseNumber,
			&d.Qualification, &d.ExperienceYears, &d.ConsultationFee)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DoctorService) Dashboard(ctx context.Context, userID int) (*models.Dashboard, error) {
	doc, err := s.EnsureDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &models.Dashboard{Doctor: *doc}

	if out.TodayAppointments, err = s.queryAppointments(ctx,
		`WHERE a.doctor_id = ? AND a.appointment_date = CURDATE() ORDER BY a.appointment_time`, userID); err != nil {
		return nil, err
	}
	if out.UpcomingAppointments, err = s.queryAppointments(ctx,
		`WHERE a.doctor_id = ? AND a.appointment_date >= CURDATE() AND a.status NOT IN (?, ?)
		 ORDER BY a.appointment_date, a.appointment_time LIMIT 10`,
		userID, string(cmodels.VisitCompleted), string(cmodels.VisitCancelled)); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.patient_id, CONCAT(pu.first_name, ' ', pu.last_name), MAX(a.appointment_date) AS last_visit
		 FROM appointments a
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users pu ON pu.id = p.user_id
		 WHERE a.doctor_id = ?
		 GROUP BY p.id, p.patient_id, pu.first_name, pu.last_name
		 ORDER BY last_visit DESC LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("recent patients: %w", err)
	}
	defer rows.Close()
	out.RecentPatients = []models.PatientSummary{}
	for rows.Next() {
		var p models.PatientSummary
		if err := rows.Scan(&p.ID, &p.PatientCode, &p.Name, &p.LastVisit); err != nil {
			return nil, err
		}
		out.RecentPatients = append(out.RecentPatients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = ?), 0) FROM appointments WHERE doctor_id = ?`,
		string(cmodels.VisitCompleted), userID).Scan(&out.TotalAppointments, &out.CompletedAppointments)
	if err != nil {
		return nil, fmt.Errorf("appointment counts: %w", err)
	}
	return out, nil
}

// Appointments lists every appointment of the doctor, newest first.
func (s *DoctorService) Appointments(ctx context.Context, userID int) ([]pmodels.Appointment, error) {
	return s.queryAppointments(ctx,
		`WHERE a.doctor_id = ? ORDER BY a.appointment_date DESC, a.appointment_time DESC`, userID)
}

// Patients lists the distinct patients seen by the doctor.
func (s *DoctorService) Patients(ctx context.Context, userID int) ([]models.PatientSummary, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.patient_id, CONCAT(pu.first_name, ' ', pu.last_name), MAX(a.appointment_date) AS last_visit
		 FROM appointments a
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users pu ON pu.id = p.user_id
		 WHERE a.doctor_id = ?
		 GROUP BY p.id, p.patient_id, pu.first_name, pu.last_name
		 ORDER BY pu.last_name, pu.first_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	out := []models.PatientSummary{}
	for rows.Next() {
		var p models.PatientSummary
		if err := rows.Scan(&p.ID, &p.PatientCode, &p.Name, &p.LastVisit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PatientDetail shows a patient with the history shared with this doctor.
func (s *DoctorService) PatientDetail(ctx context.Context, userID, patientID int) (*models.PatientDetail, error) {
	var out models.PatientDetail
	p := &out.Patient
	err := s.DB.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.patient_id, CONCAT(u.first_name, ' ', u.last_name), p.blood_group,
		        p.height, p.weight, p.allergies, p.emergency_contact_number, p.is_admitted
		 FROM patients p JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`, patientID).
		Scan(&p.ID, &p.UserID, &p.PatientID, &p.Name, &p.BloodGroup, &p.Height, &p.Weight,
			&p.Allergies, &p.EmergencyContactNumber, &p.IsAdmitted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if out.Appointments, err = s.queryAppointments(ctx,
		`WHERE a.doctor_id = ? AND a.patient_id = ? ORDER BY a.appointment_date DESC`, userID, patientID); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.id, r.patient_id, CONCAT(u.first_name, ' ', u.last_name), r.appointment_id, r.diagnosis,
		        r.clinical_notes, r.prescribed_medicines, r.ordered_tests, r.requires_admission, r.visit_date
		 FROM medical_records r LEFT JOIN users u ON u.id = r.doctor_id
		 WHERE r.patient_id = ? AND r.doctor_id = ?
		 ORDER BY r.visit_date DESC`, patientID, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	out.MedicalRecords = []pmodels.MedicalRecord{}
	for rows.Next() {
		var r pmodels.MedicalRecord
		if err := rows.Scan(&r.ID, &r.PatientID, &r.DoctorName, &r.AppointmentID, &r.Diagnosis,
			&r.ClinicalNotes, &r.PrescribedMedicines, &r.OrderedTests, &r.RequiresAdmission, &r.VisitDate); err != nil {
			return nil, err
		}
		out.MedicalRecords = append(out.MedicalRecords, r)
	}
	return &out, rows.Err()
}

func (s *DoctorService) queryAppointments(ctx context.Context, where string, args ...interface{}) ([]pmodels.Appointment, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+appointmentColumns+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []pmodels.Appointment{}
	for rows.Next() {
		var a pmodels.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.AppointmentDate,
			&a.AppointmentTime, &a.Reason, &a.Status, &a.Temp, &a.BP, &a.Pulse, &a.RespiratoryRate,
			&a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
