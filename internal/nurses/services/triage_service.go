package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/nurses/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
)

var (
	ErrInvalidVitals   = errors.New("vitals are incomplete or out of range")
	ErrPatientNotFound = errors.New("patient not found")
)

type TriageService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
}

func NewTriageService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *TriageService {
	return &TriageService{DB: db, Events: pub, Log: log}
}

// Queue lists visits waiting for vitals, earliest slot first.
func (s *TriageService) Queue(ctx context.Context) (*models.Dashboard, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT a.id, p.id, p.patient_id, CONCAT(pu.first_name, ' ', pu.last_name),
		        CONCAT(du.first_name, ' ', du.last_name), a.appointment_date, a.appointment_time, a.reason
		 FROM appointments a
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users pu ON pu.id = p.user_id
		 JOIN users du ON du.id = a.doctor_id
		 WHERE a.status = ?
		 ORDER BY a.appointment_date, a.appointment_time`, string(cmodels.VisitPending))
	if err != nil {
		return nil, fmt.Errorf("list triage queue: %w", err)
	}
	defer rows.Close()

	out := &models.Dashboard{Queue: []models.QueueEntry{}}
	for rows.Next() {
		var q models.QueueEntry
		if err := rows.Scan(&q.AppointmentID, &q.PatientID, &q.PatientCode, &q.PatientName, &q.DoctorName,
			&q.AppointmentDate, &q.AppointmentTime, &q.Reason); err != nil {
			return nil, err
		}
		out.Queue = append(out.Queue, q)
	}
	out.QueueCount = len(out.Queue)
	return out, rows.Err()
}

// EnterVitals stores triage vitals on the visit and marks it ready for the
// doctor in a single conditional write.
func (s *TriageService) EnterVitals(ctx context.Context, appointmentID int, req models.TriageRequest) error {
	if req.Temp <= 0 || strings.TrimSpace(req.BP) == "" || req.Pulse <= 0 {
		return fmt.Errorf("%w: temp, bp and pulse are required", ErrInvalidVitals)
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE appointments
		 SET temp = ?, bp = ?, pulse = ?, respiratory_rate = ?, status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ?`,
		req.Temp, req.BP, req.Pulse, nullInt(req.RespiratoryRate), string(cmodels.VisitReady),
		appointmentID, string(cmodels.VisitPending))
	if err != nil {
		return fmt.Errorf("save triage vitals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// tell a missing visit apart from one already triaged
		if _, err := repository.VisitStatus(ctx, s.DB, appointmentID); err != nil {
			return err
		}
		return repository.ErrInvalidTransition
	}

	metrics.VisitTransitionsTotal.WithLabelValues(string(cmodels.VisitPending), string(cmodels.VisitReady)).Inc()
	s.Events.Publish(ctx, events.New(events.VisitStatusChanged, map[string]interface{}{
		"appointment_id": appointmentID, "from": cmodels.VisitPending, "to": cmodels.VisitReady,
	}))
	s.Log.Info().Int("appointment_id", appointmentID).Msg("triage complete, patient ready for doctor")
	return nil
}

// RecordVitals stores a standalone vitals reading for a patient.
func (s *TriageService) RecordVitals(ctx context.Context, nurseID int, req models.VitalsRequest) (*models.Vitals, error) {
	if req.Temperature <= 0 || strings.TrimSpace(req.BP) == "" || req.Pulse <= 0 || req.Weight <= 0 {
		return nil, fmt.Errorf("%w: temperature, bp, pulse and weight are required", ErrInvalidVitals)
	}
	if req.SpO2 != nil && (*req.SpO2 < 0 || *req.SpO2 > 100) {
		return nil, fmt.Errorf("%w: spo2 must be between 0 and 100", ErrInvalidVitals)
	}
	var exists int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE id = ?`, req.PatientID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO vitals (patient_id, recorded_by, temperature, bp, pulse, weight, respiratory_rate, spo2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.PatientID, nurseID, req.Temperature, req.BP, req.Pulse, req.Weight, req.RespiratoryRate, req.SpO2)
	if err != nil {
		return nil, fmt.Errorf("insert vitals: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Vitals{
		ID: int(id), PatientID: req.PatientID, RecordedBy: nurseID, Temperature: req.Temperature,
		BP: req.BP, Pulse: req.Pulse, Weight: req.Weight, RespiratoryRate: req.RespiratoryRate,
		SpO2: req.SpO2, RecordedAt: time.Now().UTC(),
	}, nil
}

func nullInt(v int) interface{} {
	if v <= 0 {
		return nil
	}
	return v
}
