package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/doctors/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/utils"
)

type visitRow struct {
	status    cmodels.VisitStatus
	patientID int
	doctorID  int
}

func loadVisit(ctx context.Context, q repository.Execer, appointmentID int, lock bool) (*visitRow, error) {
	query := `SELECT status, patient_id, doctor_id FROM appointments WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	var (
		v      visitRow
		status string
	)
	err := q.QueryRowContext(ctx, query, appointmentID).Scan(&status, &v.patientID, &v.doctorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	v.status = cmodels.VisitStatus(status)
	return &v, nil
}

// StartConsultation moves a triaged visit into the consulting room.
func (s *DoctorService) StartConsultation(ctx context.Context, doctorID, appointmentID int) error {
	v, err := loadVisit(ctx, s.DB, appointmentID, false)
	if err != nil {
		return err
	}
	if v.doctorID != doctorID {
		return ErrNotYourVisit
	}
	if err := repository.TransitionVisit(ctx, s.DB, appointmentID, cmodels.VisitReady, cmodels.VisitConsulting); err != nil {
		return err
	}
	s.publishTransition(ctx, appointmentID, cmodels.VisitReady, cmodels.VisitConsulting)
	return nil
}

// SubmitConsultation records the outcome of a consultation in one transaction:
// the medical record, lab and pharmacy orders, the consultation bill and the
// next visit status.
func (s *DoctorService) SubmitConsultation(ctx context.Context, doctorID, appointmentID int, req models.ConsultationRequest) (*models.ConsultationResult, error) {
	if strings.TrimSpace(req.Diagnosis) == "" {
		return nil, ErrDiagnosisNeeded
	}
	for _, lt := range req.LabTests {
		if strings.TrimSpace(lt.TestName) == "" {
			return nil, fmt.Errorf("%w: lab test name is required", ErrInvalidOrder)
		}
		if lt.Priority != "" && lt.Priority != "normal" && lt.Priority != "emergency" {
			return nil, fmt.Errorf("%w: priority must be normal or emergency", ErrInvalidOrder)
		}
	}
	for _, rx := range req.Prescriptions {
		if strings.TrimSpace(rx.MedicationName) == "" || rx.Quantity < 0 {
			return nil, fmt.Errorf("%w: medication name and a non-negative quantity are required", ErrInvalidOrder)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	v, err := loadVisit(ctx, tx, appointmentID, true)
	if err != nil {
		return nil, err
	}
	if v.doctorID != doctorID {
		return nil, ErrNotYourVisit
	}
	if v.status != cmodels.VisitConsulting && v.status != cmodels.VisitLabPending {
		return nil, fmt.Errorf("%w: consultation can only be submitted while consulting", repository.ErrInvalidTransition)
	}

	result := &models.ConsultationResult{AppointmentID: appointmentID, LabRequestIDs: []int{}, PrescriptionIDs: []int{}}

	var medNames, testNames []string
	for _, rx := range req.Prescriptions {
		medNames = append(medNames, rx.MedicationName)
	}
	for _, lt := range req.LabTests {
		testNames = append(testNames, lt.TestName)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO medical_records (patient_id, doctor_id, appointment_id, diagnosis, clinical_notes,
		                              prescribed_medicines, ordered_tests, requires_admission)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.patientID, doctorID, appointmentID, req.Diagnosis, req.ClinicalNotes,
		strings.Join(medNames, ", "), strings.Join(testNames, ", "), req.RequiresAdmission)
	if err != nil {
		return nil, fmt.Errorf("insert medical record: %w", err)
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	result.MedicalRecordID = int(recordID)

	for _, lt := range req.LabTests {
		priority := lt.Priority
		if priority == "" {
			priority = "normal"
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lab_requests (patient_id, doctor_id, appointment_id, test_name, priority, clinical_notes, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.patientID, doctorID, appointmentID, lt.TestName, priority, lt.ClinicalNotes, cmodels.OrderPending)
		if err != nil {
			return nil, fmt.Errorf("insert lab request: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		result.LabRequestIDs = append(result.LabRequestIDs, int(id))
	}

	for _, rx := range req.Prescriptions {
		qty := rx.Quantity
		if qty == 0 {
			qty = 1
		}
		price, err := medicinePrice(ctx, tx, rx.MedicationName)
		if err != nil {
			return nil, err
		}
		total := utils.RoundMoney(price * float64(qty))
		res, err := tx.ExecContext(ctx,
			`INSERT INTO prescriptions (patient_id, doctor_id, appointment_id, medication_name, dosage, frequency,
			                            duration, quantity, price, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.patientID, doctorID, appointmentID, rx.MedicationName, rx.Dosage, rx.Frequency,
			rx.Duration, qty, total, cmodels.OrderPending)
		if err != nil {
			return nil, fmt.Errorf("insert prescription: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		result.PrescriptionIDs = append(result.PrescriptionIDs, int(id))
		result.PrescriptionCost += total
	}
	result.PrescriptionCost = utils.RoundMoney(result.PrescriptionCost)

	bill, err := s.raiseConsultationBill(ctx, tx, v, doctorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if bill != nil {
		result.BillID = &bill.ID
		result.BillNumber = &bill.BillNumber
	}

	next := cmodels.VisitCompleted
	if len(req.LabTests) > 0 {
		next = cmodels.VisitLabPending
	}
	if v.status != next {
		if err := repository.TransitionVisit(ctx, tx, appointmentID, v.status, next); err != nil {
			return nil, err
		}
	}
	result.Status = string(next)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit consultation: %w", err)
	}

	if v.status != next {
		s.publishTransition(ctx, appointmentID, v.status, next)
	}
	if len(result.LabRequestIDs) > 0 {
		s.Events.Publish(ctx, events.New(events.LabOrdered, map[string]interface{}{
			"appointment_id": appointmentID, "lab_request_ids": result.LabRequestIDs,
		}))
	}
	if len(result.PrescriptionIDs) > 0 {
		s.Events.Publish(ctx, events.New(events.PrescriptionOrdered, map[string]interface{}{
			"appointment_id": appointmentID, "prescription_ids": result.PrescriptionIDs,
		}))
	}
	if result.BillID != nil {
		s.Events.Publish(ctx, events.New(events.BillCreated, map[string]interface{}{
			"bill_id": *result.BillID, "bill_number": *result.BillNumber, "patient_id": v.patientID,
		}))
	}
	s.Log.Info().
		Int("appointment_id", appointmentID).
		Int("labs", len(result.LabRequestIDs)).
		Int("prescriptions", len(result.PrescriptionIDs)).
		Str("status", result.Status).
		Msg("consultation submitted")
	return result, nil
}

// medicinePrice returns the unit price of an inventory item, or 0 when the
// medicine is not stocked.
func medicinePrice(ctx context.Context, tx *sql.Tx, name string) (float64, error) {
	var price float64
	err := tx.QueryRowContext(ctx,
		`SELECT price_per_unit FROM medicines WHERE LOWER(name) = LOWER(?) LIMIT 1`, name).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("medicine price: %w", err)
	}
	return price, nil
}

// raiseConsultationBill charges the doctor's fee once per appointment. It
// returns nil when the appointment already carries a consultation bill or
// the fee is zero.
func (s *DoctorService) raiseConsultationBill(ctx context.Context, tx *sql.Tx, v *visitRow, doctorID, appointmentID int) (*repository.CreatedBill, error) {
	billed, err := repository.HasAppointmentBill(ctx, tx, appointmentID, cmodels.BillConsultation)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, nil
	}
	var fee float64
	err = tx.QueryRowContext(ctx, `SELECT consultation_fee FROM doctors WHERE user_id = ?`, doctorID).Scan(&fee)
	if errors.Is(err, sql.ErrNoRows) {
		fee = DefaultConsultationFee
	} else if err != nil {
		return nil, fmt.Errorf("consultation fee: %w", err)
	}
	if fee <= 0 {
		return nil, nil
	}
	return repository.InsertBill(ctx, tx, repository.NewBill{
		PatientID:     v.patientID,
		AppointmentID: appointmentID,
		BillType:      cmodels.BillConsultation,
		Description:   fmt.Sprintf("Consultation (appointment #%d)", appointmentID),
		Amount:        fee,
		CreatedBy:     doctorID,
	})
}

// UpdateAppointmentStatus applies a manual status change requested by the doctor.
// Closing a visit straight from the consulting room still bills the consultation.
func (s *DoctorService) UpdateAppointmentStatus(ctx context.Context, doctorID, appointmentID int, req models.StatusUpdateRequest) error {
	to := cmodels.VisitStatus(req.Status)
	if !to.Valid() {
		return repository.ErrInvalidStatus
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	v, err := loadVisit(ctx, tx, appointmentID, true)
	if err != nil {
		return err
	}
	if v.doctorID != doctorID {
		return ErrNotYourVisit
	}
	if err := repository.TransitionVisit(ctx, tx, appointmentID, v.status, to); err != nil {
		return err
	}
	if strings.TrimSpace(req.Notes) != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE appointments SET notes = ? WHERE id = ?`, req.Notes, appointmentID); err != nil {
			return fmt.Errorf("save notes: %w", err)
		}
	}
	var bill *repository.CreatedBill
	if v.status == cmodels.VisitConsulting && to == cmodels.VisitCompleted {
		if bill, err = s.raiseConsultationBill(ctx, tx, v, doctorID, appointmentID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status change: %w", err)
	}

	s.publishTransition(ctx, appointmentID, v.status, to)
	if bill != nil {
		s.Events.Publish(ctx, events.New(events.BillCreated, map[string]interface{}{
			"bill_id": bill.ID, "bill_number": bill.BillNumber, "patient_id": v.patientID,
		}))
	}
	return nil
}

// AddMedicalRecord stores a record outside of a consultation.
func (s *DoctorService) AddMedicalRecord(ctx context.Context, doctorID int, req models.MedicalRecordRequest) (int, error) {
	if strings.TrimSpace(req.Diagnosis) == "" {
		return 0, ErrDiagnosisNeeded
	}
	var exists int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE id = ?`, req.PatientID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPatientNotFound
	}
	if err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO medical_records (patient_id, doctor_id, diagnosis, clinical_notes, prescribed_medicines,
		                              ordered_tests, requires_admission)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.PatientID, doctorID, req.Diagnosis, req.ClinicalNotes, req.PrescribedMedicines,
		req.OrderedTests, req.RequiresAdmission)
	if err != nil {
		return 0, fmt.Errorf("insert medical record: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (s *DoctorService) publishTransition(ctx context.Context, appointmentID int, from, to cmodels.VisitStatus) {
	s.Events.Publish(ctx, events.New(events.VisitStatusChanged, map[string]interface{}{
		"appointment_id": appointmentID, "from": from, "to": to,
	}))
	s.Log.Info().Int("appointment_id", appointmentID).Str("from", string(from)).Str("to", string(to)).Msg("visit status changed")
}
