package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/common/models"
)

const updateVisit = `UPDATE appointments SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`

func TestTransitionVisit_Applies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("ready", 4, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, TransitionVisit(context.Background(), db, 4, models.VisitPending, models.VisitReady))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionVisit_ZeroRowsIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("consulting", 4, "ready").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = TransitionVisit(context.Background(), db, 4, models.VisitReady, models.VisitConsulting)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionVisit_RejectsBeforeTouchingDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = TransitionVisit(context.Background(), db, 4, models.VisitPending, models.VisitCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = TransitionVisit(context.Background(), db, 4, models.VisitPending, models.VisitStatus("triage"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceVisit_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM appointments WHERE id = ?`)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err = AdvanceVisit(context.Background(), db, 99, models.VisitCancelled)
	assert.ErrorIs(t, err, ErrVisitNotFound)
}

func TestInsertBill_TotalIsAmountMinusDiscount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bills`)).
		WithArgs(sqlmock.AnyArg(), 3, "treatment", "Dressing", 1200.0, 200.0, 1000.0, "pending", 9, nil).
		WillReturnResult(sqlmock.NewResult(15, 1))

	bill, err := InsertBill(context.Background(), db, NewBill{
		PatientID: 3, BillType: models.BillTreatment, Description: "Dressing",
		Amount: 1200, Discount: 200, CreatedBy: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, bill.ID)
	assert.Equal(t, 1000.0, bill.TotalAmount)
	assert.Regexp(t, `^BILL[0-9A-F]{8}$`, bill.BillNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBill_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = InsertBill(context.Background(), db, NewBill{BillType: "gift", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidBill)
	_, err = InsertBill(context.Background(), db, NewBill{BillType: models.BillOther, Amount: 10, Discount: 11})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = InsertBill(context.Background(), db, NewBill{BillType: models.BillOther, Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecomputeBillStatus(t *testing.T) {
	cases := []struct {
		paid float64
		want string
	}{
		{500, models.BillStatusPaid},
		{200, models.BillStatusPartiallyPaid},
		{0, models.BillStatusPending},
	}
	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT b.total_amount, COALESCE(SUM(p.amount), 0)`)).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"total_amount", "paid"}).AddRow(500.0, tc.paid))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE bills SET status = ? WHERE id = ?`)).
			WithArgs(tc.want, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := RecomputeBillStatus(context.Background(), db, 2)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestLogActivity_WrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO activity_logs`)).
		WillReturnError(errors.New("disk full"))

	err = LogActivity(context.Background(), db, 1, "Login", "")
	assert.ErrorContains(t, err, "log activity")
}

func TestActionColor(t *testing.T) {
	assert.Equal(t, "danger", ActionColor("Deactivate user"))
	assert.Equal(t, "danger", ActionColor("Delete record"))
	assert.Equal(t, "success", ActionColor("Activate user"))
	assert.Equal(t, "success", ActionColor("LOGIN"))
	assert.Equal(t, "warning", ActionColor("Role change"))
	assert.Equal(t, "info", ActionColor("Logout"))
}
