package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/doctors/models"
	"github.com/c14220110/hms-backend/pkg/events"
)

const (
	lockVisit   = `SELECT status, patient_id, doctor_id FROM appointments WHERE id = ? FOR UPDATE`
	readVisit   = `SELECT status, patient_id, doctor_id FROM appointments WHERE id = ?`
	updateVisit = `UPDATE appointments SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`
	billedVisit = `SELECT COUNT(*) FROM bills WHERE appointment_id = ? AND bill_type = ?`
)

func billCount(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func newService(t *testing.T) (*DoctorService, sqlmock.Sqlmock, *events.Recorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rec := &events.Recorder{}
	return NewDoctorService(db, rec, zerolog.Nop()), mock, rec
}

func visitRows(status string, doctorID int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"status", "patient_id", "doctor_id"}).AddRow(status, 3, doctorID)
}

func TestSubmitConsultation_WithLabsGoesToLabPending(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(50).WillReturnRows(visitRows("consulting", 5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medical_records`)).
		WithArgs(3, 5, 50, "Malaria", "", "Artemether", "Malaria parasite", false).
		WillReturnResult(sqlmock.NewResult(70, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO lab_requests`)).
		WithArgs(3, 5, 50, "Malaria parasite", "emergency", "", "pending").
		WillReturnResult(sqlmock.NewResult(80, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price_per_unit FROM medicines WHERE LOWER(name) = LOWER(?) LIMIT 1`)).
		WithArgs("Artemether").
		WillReturnRows(sqlmock.NewRows([]string{"price_per_unit"}).AddRow(150.0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO prescriptions`)).
		WithArgs(3, 5, 50, "Artemether", "80mg", "2x daily", "3 days", 6, 900.0, "pending").
		WillReturnResult(sqlmock.NewResult(90, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WithArgs(50, "consultation").WillReturnRows(billCount(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT consultation_fee FROM doctors WHERE user_id = ?`)).
		WithArgs(5).WillReturnRows(sqlmock.NewRows([]string{"consultation_fee"}).AddRow(500.0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bills`)).
		WithArgs(sqlmock.AnyArg(), 3, "consultation", "Consultation (appointment #50)", 500.0, 0.0, 500.0, "pending", 5, 50).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("lab_pending", 50, "consulting").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{
		Diagnosis: "Malaria",
		LabTests:  []models.LabOrder{{TestName: "Malaria parasite", Priority: "emergency"}},
		Prescriptions: []models.PrescriptionOrder{
			{MedicationName: "Artemether", Dosage: "80mg", Frequency: "2x daily", Duration: "3 days", Quantity: 6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "lab_pending", res.Status)
	assert.Equal(t, []int{80}, res.LabRequestIDs)
	assert.Equal(t, []int{90}, res.PrescriptionIDs)
	assert.Equal(t, 900.0, res.PrescriptionCost)
	require.NotNil(t, res.BillID)
	assert.Equal(t, 100, *res.BillID)
	assert.Equal(t, []string{
		events.VisitStatusChanged, events.LabOrdered, events.PrescriptionOrdered, events.BillCreated,
	}, rec.Types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitConsultation_AfterLabsCompletesWithoutSecondBill(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(50).WillReturnRows(visitRows("lab_pending", 5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medical_records`)).WillReturnResult(sqlmock.NewResult(71, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WithArgs(50, "consultation").WillReturnRows(billCount(1))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("completed", 50, "lab_pending").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{Diagnosis: "Malaria, confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Nil(t, res.BillID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitConsultation_ReviewAfterLabsDoesNotRebill(t *testing.T) {
	svc, mock, rec := newService(t)

	// doctor reopens the visit to review results
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(50).WillReturnRows(visitRows("lab_pending", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("consulting", 50, "lab_pending").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "consulting"}))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(50).WillReturnRows(visitRows("consulting", 5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medical_records`)).WillReturnResult(sqlmock.NewResult(73, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WithArgs(50, "consultation").WillReturnRows(billCount(1))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("completed", 50, "consulting").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{Diagnosis: "Malaria, treated"})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Nil(t, res.BillID)
	assert.NotContains(t, rec.Types(), events.BillCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitConsultation_UntrackedMedicineIsFree(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("consulting", 5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medical_records`)).WillReturnResult(sqlmock.NewResult(72, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price_per_unit FROM medicines`)).
		WillReturnRows(sqlmock.NewRows([]string{"price_per_unit"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO prescriptions`)).
		WithArgs(3, 5, 50, "Herbal tea", "", "", "", 1, 0.0, "pending").
		WillReturnResult(sqlmock.NewResult(91, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WillReturnRows(billCount(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT consultation_fee FROM doctors`)).
		WillReturnRows(sqlmock.NewRows([]string{"consultation_fee"}).AddRow(0.0))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("completed", 50, "consulting").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{
		Diagnosis:     "Common cold",
		Prescriptions: []models.PrescriptionOrder{{MedicationName: "Herbal tea"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.PrescriptionCost)
	assert.Nil(t, res.BillID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitConsultation_Guards(t *testing.T) {
	svc, mock, rec := newService(t)

	_, err := svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{})
	assert.ErrorIs(t, err, ErrDiagnosisNeeded)

	_, err = svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{
		Diagnosis: "x", LabTests: []models.LabOrder{{TestName: "FBC", Priority: "urgent"}},
	})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("ready", 5))
	mock.ExpectRollback()
	_, err = svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{Diagnosis: "x"})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("consulting", 6))
	mock.ExpectRollback()
	_, err = svc.SubmitConsultation(context.Background(), 5, 50, models.ConsultationRequest{Diagnosis: "x"})
	assert.ErrorIs(t, err, ErrNotYourVisit)

	assert.Empty(t, rec.Events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartConsultation(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectQuery(regexp.QuoteMeta(readVisit)).WithArgs(50).WillReturnRows(visitRows("ready", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("consulting", 50, "ready").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.StartConsultation(context.Background(), 5, 50))
	assert.Equal(t, []string{events.VisitStatusChanged}, rec.Types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentStatus(t *testing.T) {
	svc, mock, _ := newService(t)

	err := svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "finished"})
	assert.ErrorIs(t, err, repository.ErrInvalidStatus)

	// completed is terminal
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("completed", 5))
	mock.ExpectRollback()
	err = svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "pending"})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("ready", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("cancelled", 50, "ready").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE appointments SET notes = ? WHERE id = ?`)).
		WithArgs("Patient left", 50).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err = svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "cancelled", Notes: "Patient left"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentStatus_NotesFailureKeepsStatus(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WillReturnRows(visitRows("ready", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("cancelled", 50, "ready").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE appointments SET notes = ? WHERE id = ?`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "cancelled", Notes: "Patient left"})
	assert.Error(t, err)
	assert.Empty(t, rec.Events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentStatus_CompletingConsultationBillsOnce(t *testing.T) {
	svc, mock, rec := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(50).WillReturnRows(visitRows("consulting", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("completed", 50, "consulting").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WithArgs(50, "consultation").WillReturnRows(billCount(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT consultation_fee FROM doctors WHERE user_id = ?`)).
		WithArgs(5).WillReturnRows(sqlmock.NewRows([]string{"consultation_fee"}).AddRow(300.0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bills`)).
		WithArgs(sqlmock.AnyArg(), 3, "consultation", "Consultation (appointment #50)", 300.0, 0.0, 300.0, "pending", 5, 50).
		WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectCommit()
	require.NoError(t, svc.UpdateAppointmentStatus(context.Background(), 5, 50, models.StatusUpdateRequest{Status: "completed"}))
	assert.Equal(t, []string{events.VisitStatusChanged, events.BillCreated}, rec.Types())

	// a second visit that was already billed closes without a new bill
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockVisit)).WithArgs(51).WillReturnRows(visitRows("consulting", 5))
	mock.ExpectExec(regexp.QuoteMeta(updateVisit)).
		WithArgs("completed", 51, "consulting").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(billedVisit)).WithArgs(51, "consultation").WillReturnRows(billCount(1))
	mock.ExpectCommit()
	require.NoError(t, svc.UpdateAppointmentStatus(context.Background(), 5, 51, models.StatusUpdateRequest{Status: "completed"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDoctor_CreatesDefaultProfile(t *testing.T) {
	svc, mock, _ := newService(t)
	cols := []string{"id", "user_id", "doctor_id", "name", "specialization", "license_number",
		"qualification", "experience_years", "consultation_fee"}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM doctors d JOIN users u`)).WithArgs(5).WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO doctors`)).
		WithArgs(5, "DOC00005", "LIC00005", 500.0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM doctors d JOIN users u`)).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 5, "DOC00005", "John Smith", "general", "LIC00005", "MBBS", 0, 500.0))

	d, err := svc.EnsureDoctor(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "DOC00005", d.DoctorID)
	assert.Equal(t, 500.0, d.ConsultationFee)
	assert.NoError(t, mock.ExpectationsWereMet())
}
