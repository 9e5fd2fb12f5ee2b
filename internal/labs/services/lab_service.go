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
	"github.com/c14220110/hms-backend/internal/labs/models"
	"github.com/c14220110/hms-backend/pkg/events"
)

var (
	ErrLabNotFound     = errors.New("lab request not found")
	ErrLabNotPaid      = errors.New("lab request is not awaiting results")
	ErrFindingsNeeded  = errors.New("findings are required")
	ErrReagentNotFound = errors.New("reagent not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type LabService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
	now    func() time.Time
}

func NewLabService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *LabService {
	return &LabService{DB: db, Events: pub, Log: log, now: time.Now}
}

const labColumns = `l.id, l.patient_id, CONCAT(pu.first_name, ' ', pu.last_name), CONCAT(du.first_name, ' ', du.last_name),
	l.appointment_id, l.test_name, l.priority, l.clinical_notes, l.findings, l.attachment, l.status,
	l.created_at, l.updated_at
	FROM lab_requests l
	LEFT JOIN patients p ON p.id = l.patient_id
	LEFT JOIN users pu ON pu.id = p.user_id
	LEFT JOIN users du ON du.id = l.doctor_id`

func (s *LabService) list(ctx context.Context, where string, args ...interface{}) ([]models.LabRequest, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+labColumns+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list lab requests: %w", err)
	}
	defer rows.Close()

	out := []models.LabRequest{}
	for rows.Next() {
		var l models.LabRequest
		if err := rows.Scan(&l.ID, &l.PatientID, &l.PatientName, &l.DoctorName, &l.AppointmentID, &l.TestName,
			&l.Priority, &l.ClinicalNotes, &l.Findings, &l.Attachment, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Dashboard shows the paid queue (emergencies first, then oldest) and monthly stats.
func (s *LabService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	queue, err := s.list(ctx,
		`WHERE l.status = ? ORDER BY l.priority = 'emergency' DESC, l.created_at ASC`, cmodels.OrderPaid)
	if err != nil {
		return nil, err
	}
	recent, err := s.list(ctx,
		`WHERE l.status = ? ORDER BY l.updated_at DESC LIMIT 5`, cmodels.OrderCompleted)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := &models.Dashboard{
		Queue:             queue,
		RecentCompletions: recent,
		WaitingCount:      len(queue),
		CurrentMonthName:  now.Month().String(),
		ChartLabels:       []string{},
		ChartData:         []int{},
	}
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lab_requests
		 WHERE status = ? AND YEAR(updated_at) = ? AND MONTH(updated_at) = ?`,
		cmodels.OrderCompleted, now.Year(), int(now.Month())).Scan(&out.TotalMonthlyTests)
	if err != nil {
		return nil, fmt.Errorf("monthly lab count: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT test_name, COUNT(*) AS n FROM lab_requests GROUP BY test_name ORDER BY n DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("lab chart: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tc models.TestCount
		if err := rows.Scan(&tc.TestName, &tc.Count); err != nil {
			return nil, err
		}
		out.ChartLabels = append(out.ChartLabels, tc.TestName)
		out.ChartData = append(out.ChartData, tc.Count)
	}
	return out, rows.Err()
}

// SubmitResult records findings on a paid request and completes it.
func (s *LabService) SubmitResult(ctx context.Context, labID int, req models.ResultRequest) error {
	if strings.TrimSpace(req.Findings) == "" {
		return ErrFindingsNeeded
	}
	var attachment interface{}
	if req.Attachment != "" {
		attachment = req.Attachment
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE lab_requests SET findings = ?, attachment = COALESCE(?, attachment), status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ?`,
		req.Findings, attachment, cmodels.OrderCompleted, labID, cmodels.OrderPaid)
	if err != nil {
		return fmt.Errorf("save lab result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := s.DB.QueryRowContext(ctx, `SELECT status FROM lab_requests WHERE id = ?`, labID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLabNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: status is %s", ErrLabNotPaid, status)
	}

	var appointmentID sql.NullInt64
	if err := s.DB.QueryRowContext(ctx, `SELECT appointment_id FROM lab_requests WHERE id = ?`, labID).Scan(&appointmentID); err != nil {
		s.Log.Warn().Err(err).Int("lab_request_id", labID).Msg("lab appointment lookup failed")
	}
	data := map[string]interface{}{"lab_request_id": labID}
	if appointmentID.Valid {
		data["appointment_id"] = appointmentID.Int64
	}
	s.Events.Publish(ctx, events.New(events.LabCompleted, data))
	s.Log.Info().Int("lab_request_id", labID).Msg("lab result submitted")
	return nil
}

func (s *LabService) Reagents(ctx context.Context) ([]models.Reagent, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, stock_quantity, min_threshold, last_restocked FROM reagents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list reagents: %w", err)
	}
	defer rows.Close()
	out := []models.Reagent{}
	for rows.Next() {
		var r models.Reagent
		if err := rows.Scan(&r.ID, &r.Name, &r.StockQuantity, &r.MinThreshold, &r.LastRestocked); err != nil {
			return nil, err
		}
		r.IsLow = r.StockQuantity <= r.MinThreshold
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *LabService) AddReagent(ctx context.Context, req models.ReagentRequest) (int, error) {
	if strings.TrimSpace(req.Name) == "" || req.StockQuantity < 0 || req.MinThreshold < 0 {
		return 0, fmt.Errorf("%w: name required, quantities non-negative", ErrInvalidQuantity)
	}
	if req.MinThreshold == 0 {
		req.MinThreshold = 10
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO reagents (name, stock_quantity, min_threshold) VALUES (?, ?, ?)`,
		req.Name, req.StockQuantity, req.MinThreshold)
	if err != nil {
		return 0, fmt.Errorf("insert reagent: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (s *LabService) Restock(ctx context.Context, reagentID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE reagents SET stock_quantity = stock_quantity + ?, last_restocked = NOW() WHERE id = ?`,
		quantity, reagentID)
	if err != nil {
		return fmt.Errorf("restock reagent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReagentNotFound
	}
	return nil
}

var seedTests = []string{"Full Blood Count", "Malaria Parasite", "Urinalysis", "Blood Sugar", "Chest X-Ray"}

// SeedPaidRequests fills the lab queue with paid requests for existing
// patients. Used to demo the lab station.
func (s *LabService) SeedPaidRequests(ctx context.Context, n int) (int, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id FROM patients ORDER BY id LIMIT ?`, n)
	if err != nil {
		return 0, fmt.Errorf("list patients: %w", err)
	}
	var patients []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		patients = append(patients, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(patients) == 0 {
		return 0, nil
	}

	created := 0
	for i := 0; i < n; i++ {
		priority := "normal"
		if i%4 == 0 {
			priority = "emergency"
		}
		if _, err := s.DB.ExecContext(ctx,
			`INSERT INTO lab_requests (patient_id, test_name, priority, clinical_notes, status) VALUES (?, ?, ?, ?, ?)`,
			patients[i%len(patients)], seedTests[i%len(seedTests)], priority, "Seeded request", cmodels.OrderPaid); err != nil {
			return created, fmt.Errorf("seed lab request: %w", err)
		}
		created++
	}
	return created, nil
}
