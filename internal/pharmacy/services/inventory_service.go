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
	"github.com/c14220110/hms-backend/internal/pharmacy/models"
	"github.com/c14220110/hms-backend/pkg/events"
)

var (
	ErrInvalidMedicine = errors.New("invalid medicine")
)

// AlertWindow is how far ahead expiring stock is reported.
const AlertWindow = 30 * 24 * time.Hour

type PharmacyService struct {
	DB     *sql.DB
	Events events.Publisher
	Log    zerolog.Logger
	now    func() time.Time
}

func NewPharmacyService(db *sql.DB, pub events.Publisher, log zerolog.Logger) *PharmacyService {
	return &PharmacyService{DB: db, Events: pub, Log: log, now: time.Now}
}

const medicineColumns = `id, name, category, quantity, reorder_level, price_per_unit, expiry_date, last_updated FROM medicines`

func (s *PharmacyService) medicines(ctx context.Context, where string, args ...interface{}) ([]models.Medicine, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+medicineColumns+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()
	out := []models.Medicine{}
	for rows.Next() {
		var m models.Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Quantity, &m.ReorderLevel, &m.PricePerUnit,
			&m.ExpiryDate, &m.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PharmacyService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT rx.id, rx.patient_id, CONCAT(pu.first_name, ' ', pu.last_name), CONCAT(du.first_name, ' ', du.last_name),
		        rx.appointment_id, rx.medication_name, rx.dosage, rx.frequency, rx.duration, rx.quantity, rx.price,
		        rx.status, rx.created_at
		 FROM prescriptions rx
		 JOIN patients p ON p.id = rx.patient_id
		 JOIN users pu ON pu.id = p.user_id
		 LEFT JOIN users du ON du.id = rx.doctor_id
		 WHERE rx.status = ?
		 ORDER BY rx.created_at DESC`, cmodels.OrderPaid)
	if err != nil {
		return nil, fmt.Errorf("list paid prescriptions: %w", err)
	}
	defer rows.Close()

	out := &models.Dashboard{Prescriptions: []models.Prescription{}}
	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.DoctorName, &p.AppointmentID,
			&p.MedicationName, &p.Dosage, &p.Frequency, &p.Duration, &p.Quantity, &p.Price,
			&p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out.Prescriptions = append(out.Prescriptions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out.Inventory, err = s.medicines(ctx, `ORDER BY quantity`); err != nil {
		return nil, err
	}
	out.TotalDrugs = len(out.Inventory)
	for _, m := range out.Inventory {
		if m.IsLow() {
			out.LowStock++
		}
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM prescriptions WHERE status = ?),
		        (SELECT COALESCE(SUM(price), 0) FROM prescriptions WHERE status = ? AND DATE(updated_at) = CURDATE())`,
		cmodels.OrderPending, cmodels.OrderDispensed).Scan(&out.PendingCount, &out.TodaySales)
	if err != nil {
		return nil, fmt.Errorf("pharmacy stats: %w", err)
	}
	return out, nil
}

func (s *PharmacyService) AddMedicine(ctx context.Context, req models.MedicineRequest) (*models.Medicine, error) {
	if strings.TrimSpace(req.Name) == "" || req.Price < 0 || req.Quantity < 0 {
		return nil, fmt.Errorf("%w: name, non-negative price and quantity are required", ErrInvalidMedicine)
	}
	reorder := 10
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return nil, fmt.Errorf("%w: reorder_level cannot be negative", ErrInvalidMedicine)
		}
		reorder = *req.ReorderLevel
	}
	var expiry *time.Time
	if req.ExpiryDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", ErrInvalidMedicine)
		}
		expiry = &d
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO medicines (name, category, quantity, reorder_level, price_per_unit, expiry_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Name, req.Category, req.Quantity, reorder, req.Price, expiry)
	if err != nil {
		return nil, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.Log.Info().Int64("medicine_id", id).Str("name", req.Name).Int("quantity", req.Quantity).Msg("stock registered")
	return &models.Medicine{
		ID: int(id), Name: req.Name, Category: req.Category, Quantity: req.Quantity,
		ReorderLevel: reorder, PricePerUnit: req.Price, ExpiryDate: expiry, LastUpdated: s.now().UTC(),
	}, nil
}

// Alerts lists stock that is expired, expiring within AlertWindow, or at/below its reorder level.
func (s *PharmacyService) Alerts(ctx context.Context) (*models.InventoryAlerts, error) {
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	horizon := today.Add(AlertWindow)

	var (
		out models.InventoryAlerts
		err error
	)
	if out.Expired, err = s.medicines(ctx, `WHERE expiry_date IS NOT NULL AND expiry_date <= ? ORDER BY expiry_date`, today); err != nil {
		return nil, err
	}
	if out.ExpiringSoon, err = s.medicines(ctx,
		`WHERE expiry_date > ? AND expiry_date <= ? ORDER BY expiry_date`, today, horizon); err != nil {
		return nil, err
	}
	if out.LowStock, err = s.medicines(ctx, `WHERE quantity <= reorder_level ORDER BY quantity`); err != nil {
		return nil, err
	}
	return &out, nil
}

// InventoryReport lists all stock by name with a LOW/OK flag.
func (s *PharmacyService) InventoryReport(ctx context.Context) ([]models.InventoryLine, error) {
	meds, err := s.medicines(ctx, `ORDER BY name`)
	if err != nil {
		return nil, err
	}
	out := make([]models.InventoryLine, 0, len(meds))
	for _, m := range meds {
		status := "OK"
		if m.IsLow() {
			status = "LOW"
		}
		out = append(out, models.InventoryLine{Medicine: m, StockStatus: status})
	}
	return out, nil
}

// AuditLogs returns the latest 100 dispensing entries, optionally filtered by
// patient, medication or pharmacist surname.
func (s *PharmacyService) AuditLogs(ctx context.Context, q string) ([]models.DispensingLog, error) {
	query := `SELECT l.id, l.pharmacist_id, CONCAT(u.first_name, ' ', u.last_name), l.patient_name, l.medication_name,
	                 l.quantity_dispensed, l.notes, l.created_at
	          FROM dispensing_logs l LEFT JOIN users u ON u.id = l.pharmacist_id`
	var args []interface{}
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + q + "%"
		query += ` WHERE l.patient_name LIKE ? OR l.medication_name LIKE ? OR u.last_name LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY l.created_at DESC LIMIT 100`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dispensing logs: %w", err)
	}
	defer rows.Close()
	out := []models.DispensingLog{}
	for rows.Next() {
		var l models.DispensingLog
		if err := rows.Scan(&l.ID, &l.PharmacistID, &l.PharmacistName, &l.PatientName, &l.MedicationName,
			&l.QuantityDispensed, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
