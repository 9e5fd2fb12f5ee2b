package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/pkg/events"
)

const (
	lockPrescription = `FROM prescriptions rx
		 JOIN patients p ON p.id = rx.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE rx.id = ? FOR UPDATE`
	lockMedicine   = `WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1 FOR UPDATE`
	deductStock    = `UPDATE medicines SET quantity = quantity - ? WHERE id = ?`
	markDispensed  = `UPDATE prescriptions SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`
	insertDispense = `INSERT INTO dispensing_logs`
)

var medCols = []string{"id", "name", "quantity", "reorder_level", "expiry_date"}

func newService(t *testing.T) (*PharmacyService, sqlmock.Sqlmock, *events.Recorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rec := &events.Recorder{}
	svc := NewPharmacyService(db, rec, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mock, rec
}

func prescriptionRow(status string, qty int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"status", "medication_name", "quantity", "patient_name"}).
		AddRow(status, "amoxicillin", qty, "Ada Obi")
}

func TestDispense_DeductsStock(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WithArgs(7).WillReturnRows(prescriptionRow("paid", 10))
	mock.ExpectQuery(regexp.QuoteMeta(lockMedicine)).WithArgs("amoxicillin").
		WillReturnRows(sqlmock.NewRows(medCols).AddRow(2, "Amoxicillin", 50, 10, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectExec(regexp.QuoteMeta(deductStock)).WithArgs(10, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(markDispensed)).WithArgs("dispensed", 7, "paid").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertDispense)).
		WithArgs(4, "Ada Obi", "Amoxicillin", 10, "Prescription ID: 7").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Dispense(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.True(t, res.Tracked)
	require.NotNil(t, res.RemainingStock)
	assert.Equal(t, 40, *res.RemainingStock)
	assert.Equal(t, []string{events.PrescriptionDispense}, rec.Types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispense_LowStockAfterwardsRaisesAlert(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("paid", 5))
	mock.ExpectQuery(regexp.QuoteMeta(lockMedicine)).
		WillReturnRows(sqlmock.NewRows(medCols).AddRow(2, "Amoxicillin", 12, 10, nil))
	mock.ExpectExec(regexp.QuoteMeta(deductStock)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(markDispensed)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertDispense)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := svc.Dispense(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{events.PrescriptionDispense, events.StockAlert}, rec.Types())
}

func TestDispense_InsufficientStockBlocks(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("paid", 10))
	mock.ExpectQuery(regexp.QuoteMeta(lockMedicine)).
		WillReturnRows(sqlmock.NewRows(medCols).AddRow(2, "Amoxicillin", 3, 10, nil))
	mock.ExpectRollback()

	_, err := svc.Dispense(context.Background(), 4, 7)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available 3")
	assert.Empty(t, rec.Events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispense_ExpiredBlocks(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("paid", 1))
	// expiring today counts as expired
	mock.ExpectQuery(regexp.QuoteMeta(lockMedicine)).
		WillReturnRows(sqlmock.NewRows(medCols).AddRow(2, "Amoxicillin", 100, 10, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectRollback()

	_, err := svc.Dispense(context.Background(), 4, 7)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispense_UntrackedItemIsLogged(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("paid", 2))
	mock.ExpectQuery(regexp.QuoteMeta(lockMedicine)).WillReturnRows(sqlmock.NewRows(medCols))
	mock.ExpectExec(regexp.QuoteMeta(markDispensed)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertDispense)).
		WithArgs(4, "Ada Obi", "amoxicillin", 2, "DISPENSED UNTRACKED ITEM (Prescription ID: 7)").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Dispense(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.Nil(t, res.RemainingStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispense_RequiresPaidPrescription(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("pending", 1))
	mock.ExpectRollback()
	_, err := svc.Dispense(context.Background(), 4, 7)
	assert.ErrorIs(t, err, ErrNotPaid)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(prescriptionRow("dispensed", 1))
	mock.ExpectRollback()
	_, err = svc.Dispense(context.Background(), 4, 7)
	assert.ErrorIs(t, err, ErrAlreadyDispensed)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPrescription)).WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()
	_, err = svc.Dispense(context.Background(), 4, 8)
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
