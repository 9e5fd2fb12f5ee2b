package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/pharmacy/models"
)

var inventoryCols = []string{"id", "name", "category", "quantity", "reorder_level", "price_per_unit", "expiry_date", "last_updated"}

func TestAddMedicine_DefaultsReorderLevel(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medicines`)).
		WithArgs("Paracetamol", "Analgesic", 200, 10, 2.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))

	med, err := svc.AddMedicine(context.Background(), models.MedicineRequest{
		Name: "Paracetamol", Category: "Analgesic", Price: 2.5, Quantity: 200, ExpiryDate: "2027-02-28",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, med.ReorderLevel)
	require.NotNil(t, med.ExpiryDate)

	_, err = svc.AddMedicine(context.Background(), models.MedicineRequest{Name: "X", Price: 1, ExpiryDate: "soon"})
	assert.ErrorIs(t, err, ErrInvalidMedicine)
}

func TestAlerts_UsesThirtyDayWindow(t *testing.T) {
	svc, mock, _ := newService(t)
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE expiry_date IS NOT NULL AND expiry_date <= ?`)).
		WithArgs(today).
		WillReturnRows(sqlmock.NewRows(inventoryCols).AddRow(1, "Old syrup", "Syrup", 5, 10, 3.0, today, now))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE expiry_date > ? AND expiry_date <= ?`)).
		WithArgs(today, today.AddDate(0, 0, 30)).
		WillReturnRows(sqlmock.NewRows(inventoryCols))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE quantity <= reorder_level`)).
		WillReturnRows(sqlmock.NewRows(inventoryCols).AddRow(1, "Old syrup", "Syrup", 5, 10, 3.0, today, now))

	a, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, a.Expired, 1)
	assert.Empty(t, a.ExpiringSoon)
	assert.Len(t, a.LowStock, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryReport_FlagsLow(t *testing.T) {
	svc, mock, _ := newService(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM medicines ORDER BY name`)).
		WillReturnRows(sqlmock.NewRows(inventoryCols).
			AddRow(1, "Amoxicillin", "Antibiotic", 8, 10, 1.2, nil, now).
			AddRow(2, "Zinc", "Supplement", 90, 10, 0.5, nil, now))

	lines, err := svc.InventoryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "LOW", lines[0].StockStatus)
	assert.Equal(t, "OK", lines[1].StockStatus)
}

func TestAuditLogs_Filter(t *testing.T) {
	svc, mock, _ := newService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE l.patient_name LIKE ? OR l.medication_name LIKE ? OR u.last_name LIKE ?`)).
		WithArgs("%ada%", "%ada%", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pharmacist_id", "pharmacist_name", "patient_name",
			"medication_name", "quantity_dispensed", "notes", "created_at"}).
			AddRow(1, 4, "Nkechi Eze", "Ada Obi", "Amoxicillin", 10, "Prescription ID: 7", time.Now()))

	logs, err := svc.AuditLogs(context.Background(), " ada ")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
