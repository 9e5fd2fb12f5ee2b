package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/pharmacy/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrNotPaid              = errors.New("prescription has not been paid for")
	ErrAlreadyDispensed     = errors.New("prescription was already dispensed")
	ErrExpired              = errors.New("dispensing blocked: medicine expired")
	ErrInsufficientStock    = errors.New("insufficient stock")
)

// Dispense hands out a paid prescription. Stock is checked and deducted under
// row locks so two pharmacists cannot dispense the same units.
func (s *PharmacyService) Dispense(ctx context.Context, pharmacistID, prescriptionID int) (*models.DispenseResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		status, medName, patientName string
		qty                          int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT rx.status, rx.medication_name, rx.quantity, CONCAT(u.first_name, ' ', u.last_name)
		 FROM prescriptions rx
		 JOIN patients p ON p.id = rx.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE rx.id = ? FOR UPDATE`, prescriptionID).Scan(&status, &medName, &qty, &patientName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	switch status {
	case cmodels.OrderPaid:
	case cmodels.OrderDispensed:
		return nil, ErrAlreadyDispensed
	default:
		return nil, ErrNotPaid
	}
	if qty <= 0 {
		qty = 1
	}

	result := &models.DispenseResult{PrescriptionID: prescriptionID, MedicationName: medName, QuantityDispensed: qty}

	var (
		medID, stock, reorder int
		expiry                sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, quantity, reorder_level, expiry_date FROM medicines
		 WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1 FOR UPDATE`, medName).
		Scan(&medID, &result.MedicationName, &stock, &reorder, &expiry)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// not stocked here; hand out and log it as untracked
	case err != nil:
		return nil, fmt.Errorf("load medicine: %w", err)
	default:
		result.Tracked = true
		y, m, d := s.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if expiry.Valid && !expiry.Time.After(today) {
			return nil, fmt.Errorf("%w: %s", ErrExpired, result.MedicationName)
		}
		if stock < qty {
			return nil, fmt.Errorf("%w: available %d", ErrInsufficientStock, stock)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE medicines SET quantity = quantity - ? WHERE id = ?`, qty, medID); err != nil {
			return nil, fmt.Errorf("deduct stock: %w", err)
		}
		remaining := stock - qty
		result.RemainingStock = &remaining
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE prescriptions SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		cmodels.OrderDispensed, prescriptionID, cmodels.OrderPaid)
	if err != nil {
		return nil, fmt.Errorf("mark dispensed: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, ErrAlreadyDispensed
	}

	notes := fmt.Sprintf("Prescription ID: %d", prescriptionID)
	if !result.Tracked {
		notes = fmt.Sprintf("DISPENSED UNTRACKED ITEM (Prescription ID: %d)", prescriptionID)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dispensing_logs (pharmacist_id, patient_name, medication_name, quantity_dispensed, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		pharmacistID, patientName, result.MedicationName, qty, notes); err != nil {
		return nil, fmt.Errorf("write dispensing log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit dispense: %w", err)
	}

	metrics.DispensedTotal.WithLabelValues(fmt.Sprintf("%t", result.Tracked)).Inc()
	s.Events.Publish(ctx, events.New(events.PrescriptionDispense, result))
	if result.RemainingStock != nil && *result.RemainingStock <= reorder {
		s.Events.Publish(ctx, events.New(events.StockAlert, map[string]interface{}{
			"kind": "low_stock", "medicine_id": medID, "name": result.MedicationName, "quantity": *result.RemainingStock,
		}))
	}
	s.Log.Info().
		Int("prescription_id", prescriptionID).
		Str("medication", result.MedicationName).
		Int("quantity", qty).
		Bool("tracked", result.Tracked).
		Msg("prescription dispensed")
	return result, nil
}
