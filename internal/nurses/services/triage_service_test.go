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

	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/nurses/models"
	"github.com/c14220110/hms-backend/pkg/events"
)

const triageUpdate = `UPDATE appointments
		 SET temp = ?, bp = ?, pulse = ?, respiratory_rate = ?, status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ?`

func newService(t *testing.T) (*TriageService, sqlmock.Sqlmock, *events.Recorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rec := &events.Recorder{}
	return NewTriageService(db, rec, zerolog.Nop()), mock, rec
}

func TestEnterVitals_MovesPendingToReady(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectExec(regexp.QuoteMeta(triageUpdate)).
		WithArgs(37.2, "120/80", 72, 16, "ready", 11, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.EnterVitals(context.Background(), 11, models.TriageRequest{Temp: 37.2, BP: "120/80", Pulse: 72, RespiratoryRate: 16})
	require.NoError(t, err)
	assert.Equal(t, []string{events.VisitStatusChanged}, rec.Types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnterVitals_AlreadyTriaged(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectExec(regexp.QuoteMeta(triageUpdate)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM appointments WHERE id = ?`)).
		WithArgs(11).WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("ready"))

	err := svc.EnterVitals(context.Background(), 11, models.TriageRequest{Temp: 37, BP: "110/70", Pulse: 80})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.Empty(t, rec.Events)
}

func TestEnterVitals_MissingVisit(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectExec(regexp.QuoteMeta(triageUpdate)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM appointments WHERE id = ?`)).
		WithArgs(404).WillReturnRows(sqlmock.NewRows([]string{"status"}))

	err := svc.EnterVitals(context.Background(), 404, models.TriageRequest{Temp: 37, BP: "110/70", Pulse: 80})
	assert.ErrorIs(t, err, repository.ErrVisitNotFound)
}

func TestEnterVitals_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.EnterVitals(context.Background(), 1, models.TriageRequest{BP: "120/80", Pulse: 70})
	assert.ErrorIs(t, err, ErrInvalidVitals)
}

func TestRecordVitals(t *testing.T) {
	svc, mock, _ := newService(t)
	spo2 := 98

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM patients WHERE id = ?`)).
		WithArgs(3).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO vitals`)).
		WillReturnResult(sqlmock.NewResult(20, 1))

	v, err := svc.RecordVitals(context.Background(), 9, models.VitalsRequest{
		PatientID: 3, Temperature: 36.8, BP: "118/76", Pulse: 66, Weight: 70.5, SpO2: &spo2,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, v.ID)
	assert.WithinDuration(t, time.Now().UTC(), v.RecordedAt, time.Minute)

	bad := 140
	_, err = svc.RecordVitals(context.Background(), 9, models.VitalsRequest{
		PatientID: 3, Temperature: 36.8, BP: "118/76", Pulse: 66, Weight: 70.5, SpO2: &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidVitals)
}
