package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/inpatient/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrInvalidWard       = errors.New("ward name, category and a positive bed count are required")
	ErrInvalidCategory   = errors.New("ward category must be General, ICU, Maternity or Pediatric")
	ErrWardNotFound      = errors.New("ward not found")
	ErrWardFull          = errors.New("ward has no free beds")
	ErrBedTaken          = errors.New("bed is already occupied")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrAlreadyAdmitted   = errors.New("patient is already admitted")
	ErrAdmissionNotFound = errors.New("active admission not found")
	ErrInvalidAdmission  = errors.New("patient, ward, bed number and reason are required")
	ErrInvalidVitals     = errors.New("temperature, blood pressure and pulse rate are required")
)

const defaultRatePerNight = 50.00

var wardCategories = []string{"General", "ICU", "Maternity", "Pediatric"}

// wardCategory returns the canonical spelling of a ward category.
func wardCategory(name string) (string, bool) {
	for _, c := range wardCategories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

type WardService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
	now    func() time.Time
}

func NewWardService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *WardService {
	return &WardService{DB: db, Events: pub, Log: log, now: time.Now}
}

// StayDays counts started days since admission, at least one.
func StayDays(admitted, now time.Time) int {
	days := int(math.Ceil(now.Sub(admitted).Seconds() / 86400))
	if days < 1 {
		return 1
	}
	return days
}

func (s *WardService) Wards(ctx context.Context) ([]models.Ward, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT w.id, w.name, w.category, w.rate_per_night, w.total_beds,
		        (SELECT COUNT(*) FROM admissions a WHERE a.ward_id = w.id AND a.is_discharged = 0)
		 FROM wards w ORDER BY w.name`)
	if err != nil {
		return nil, fmt.Errorf("list wards: %w", err)
	}
	defer rows.Close()
	out := []models.Ward{}
	for rows.Next() {
		var w models.Ward
		if err := rows.Scan(&w.ID, &w.Name, &w.Category, &w.RatePerNight, &w.TotalBeds, &w.Occupied); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *WardService) CreateWard(ctx context.Context, req models.WardRequest) (*models.Ward, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.TotalBeds <= 0 || req.RatePerNight < 0 {
		return nil, ErrInvalidWard
	}
	category, ok := wardCategory(req.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	req.Category = category
	if req.RatePerNight == 0 {
		req.RatePerNight = defaultRatePerNight
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO wards (name, category, rate_per_night, total_beds) VALUES (?, ?, ?, ?)`,
		req.Name, req.Category, req.RatePerNight, req.TotalBeds)
	if err != nil {
		return nil, fmt.Errorf("insert ward: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Ward{ID: int(id), Name: req.Name, Category: req.Category,
		RatePerNight: req.RatePerNight, TotalBeds: req.TotalBeds}, nil
}

// Dashboard lists active admissions with the stay charge accrued so far.
func (s *WardService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT a.id, a.patient_id, p.patient_id, CONCAT(u.first_name, ' ', u.last_name),
		        a.ward_id, w.name, w.rate_per_night, a.bed_number, a.reason, a.admitted_at
		 FROM admissions a
		 JOIN wards w ON w.id = a.ward_id
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE a.is_discharged = 0
		 ORDER BY a.admitted_at`)
	if err != nil {
		return nil, fmt.Errorf("list admissions: %w", err)
	}
	defer rows.Close()

	now := s.now()
	out := &models.Dashboard{Admissions: []models.Admission{}}
	for rows.Next() {
		var (
			a    models.Admission
			rate float64
		)
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientCode, &a.PatientName,
			&a.WardID, &a.WardName, &rate, &a.BedNumber, &a.Reason, &a.AdmittedAt); err != nil {
			return nil, err
		}
		a.DaysSpent = StayDays(a.AdmittedAt, now)
		a.RunningBill = utils.RoundMoney(float64(a.DaysSpent) * rate)
		out.Admissions = append(out.Admissions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.TotalOccupied = len(out.Admissions)
	return out, nil
}

// Admit places a patient in a free bed of the ward.
func (s *WardService) Admit(ctx context.Context, req models.AdmitRequest) (*models.Admission, error) {
	req.BedNumber = strings.TrimSpace(req.BedNumber)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.PatientID <= 0 || req.WardID <= 0 || req.BedNumber == "" || req.Reason == "" {
		return nil, ErrInvalidAdmission
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		wardName  string
		totalBeds int
	)
	err = tx.QueryRowContext(ctx, `SELECT name, total_beds FROM wards WHERE id = ? FOR UPDATE`, req.WardID).
		Scan(&wardName, &totalBeds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock ward: %w", err)
	}

	var occupied, bedTaken int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(bed_number = ?), 0) FROM admissions WHERE ward_id = ? AND is_discharged = 0`,
		req.BedNumber, req.WardID).Scan(&occupied, &bedTaken)
	if err != nil {
		return nil, fmt.Errorf("ward occupancy: %w", err)
	}
	if occupied >= totalBeds {
		return nil, ErrWardFull
	}
	if bedTaken > 0 {
		return nil, ErrBedTaken
	}

	var (
		admitted bool
		name     string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT p.is_admitted, CONCAT(u.first_name, ' ', u.last_name)
		 FROM patients p JOIN users u ON u.id = p.user_id
		 WHERE p.id = ? FOR UPDATE`, req.PatientID).Scan(&admitted, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock patient: %w", err)
	}
	if admitted {
		return nil, ErrAlreadyAdmitted
	}

	at := s.now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO admissions (patient_id, ward_id, bed_number, reason, admitted_at) VALUES (?, ?, ?, ?, ?)`,
		req.PatientID, req.WardID, req.BedNumber, req.Reason, at)
	if err != nil {
		return nil, fmt.Errorf("insert admission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE patients SET is_admitted = 1 WHERE id = ?`, req.PatientID); err != nil {
		return nil, fmt.Errorf("flag patient admitted: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit admission: %w", err)
	}

	out := &models.Admission{
		ID: int(id), PatientID: req.PatientID, PatientName: name, WardID: req.WardID, WardName: wardName,
		BedNumber: req.BedNumber, Reason: req.Reason, AdmittedAt: at, DaysSpent: 1,
	}
	s.Events.Publish(ctx, events.New(events.PatientAdmitted, out))
	s.Log.Info().Int("admission_id", out.ID).Str("ward", wardName).Str("bed", req.BedNumber).Msg("patient admitted")
	return out, nil
}

func (s *WardService) LogVitals(ctx context.Context, nurseID, admissionID int, req models.VitalsRequest) (*models.VitalSign, error) {
	req.BloodPressure = strings.TrimSpace(req.BloodPressure)
	if req.Temperature <= 0 || req.BloodPressure == "" || req.PulseRate <= 0 {
		return nil, ErrInvalidVitals
	}
	var active int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admissions WHERE id = ? AND is_discharged = 0`, admissionID).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check admission: %w", err)
	}
	if active == 0 {
		return nil, ErrAdmissionNotFound
	}

	at := s.now().UTC()
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO ward_vitals (admission_id, nurse_id, temperature, blood_pressure, pulse_rate, notes, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		admissionID, nurseID, req.Temperature, req.BloodPressure, req.PulseRate, strings.TrimSpace(req.Notes), at)
	if err != nil {
		return nil, fmt.Errorf("insert vitals: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.VitalSign{
		ID: int(id), AdmissionID: admissionID, NurseID: nurseID, Temperature: req.Temperature,
		BloodPressure: req.BloodPressure, PulseRate: req.PulseRate, Notes: strings.TrimSpace(req.Notes), RecordedAt: at,
	}, nil
}

// Discharge closes an admission and raises a pending treatment bill for the stay.
func (s *WardService) Discharge(ctx context.Context, userID, admissionID int) (*models.DischargeResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		patientID  int
		name       string
		admittedAt time.Time
		wardName   string
		rate       float64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT a.patient_id, CONCAT(u.first_name, ' ', u.last_name), a.admitted_at, w.name, w.rate_per_night
		 FROM admissions a
		 JOIN wards w ON w.id = a.ward_id
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE a.id = ? AND a.is_discharged = 0 FOR UPDATE`, admissionID).
		Scan(&patientID, &name, &admittedAt, &wardName, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock admission: %w", err)
	}

	now := s.now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE admissions SET is_discharged = 1, discharged_at = ? WHERE id = ? AND is_discharged = 0`, now, admissionID)
	if err != nil {
		return nil, fmt.Errorf("close admission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAdmissionNotFound
	}
	if _, err := tx.ExecContext(ctx, `UPDATE patients SET is_admitted = 0 WHERE id = ?`, patientID); err != nil {
		return nil, fmt.Errorf("clear admitted flag: %w", err)
	}

	days := StayDays(admittedAt, now)
	cost := utils.RoundMoney(float64(days) * rate)
	bill, err := repository.InsertBill(ctx, tx, repository.NewBill{
		PatientID:   patientID,
		BillType:    cmodels.BillTreatment,
		Description: fmt.Sprintf("Ward Stay: %s (%d days)", wardName, days),
		Amount:      cost,
		Status:      cmodels.BillStatusPending,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit discharge: %w", err)
	}

	out := &models.DischargeResult{
		AdmissionID: admissionID, PatientName: name, DischargedAt: now, DaysSpent: days,
		TotalCost: cost, BillID: bill.ID, BillNumber: bill.BillNumber,
	}
	s.Events.Publish(ctx, events.New(events.PatientDischarged, out))
	s.Events.Publish(ctx, events.New(events.BillCreated, map[string]interface{}{
		"bill_id": bill.ID, "bill_number": bill.BillNumber, "patient_id": patientID, "status": bill.Status,
	}))
	s.Log.Info().Int("admission_id", admissionID).Int("days", days).Float64("cost", cost).Msg("patient discharged")
	return out, nil
}
