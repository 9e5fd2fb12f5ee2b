package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/c14220110/hms-backend/internal/cashier/models"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
	"github.com/c14220110/hms-backend/pkg/paystack"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrBillClosed         = errors.New("bill is already paid or cancelled")
	ErrInvalidPayment     = errors.New("payment amount must be greater than zero")
	ErrInvalidMethod      = errors.New("invalid payment method")
	ErrReferenceRequired  = errors.New("paystack reference is required")
	ErrReferenceUsed      = errors.New("paystack reference has already been used")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrGateway            = errors.New("payment gateway unavailable")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not awaiting payment")
)

// lockOpenBill loads a bill for update and rejects closed ones.
func lockOpenBill(ctx context.Context, tx *sql.Tx, billID int) (string, error) {
	var number, status string
	err := tx.QueryRowContext(ctx, `SELECT bill_number, status FROM bills WHERE id = ? FOR UPDATE`, billID).Scan(&number, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBillNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lock bill: %w", err)
	}
	if status == cmodels.BillStatusPaid || status == cmodels.BillStatusCancelled {
		return "", ErrBillClosed
	}
	return number, nil
}

func (s *CashierService) recordPayment(ctx context.Context, billID int, p repository.NewPayment) (*models.PaymentResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	number, err := lockOpenBill(ctx, tx, billID)
	if err != nil {
		return nil, err
	}
	p.BillID = billID
	pid, err := repository.InsertPayment(ctx, tx, p)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 && p.PaystackReference != "" {
			return nil, ErrReferenceUsed
		}
		return nil, err
	}
	status, err := repository.RecomputeBillStatus(ctx, tx, billID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	metrics.RecordPayment(p.Method, p.Amount)
	s.Events.Publish(ctx, events.New(events.BillPaymentRecorded, map[string]interface{}{
		"bill_id": billID, "amount": p.Amount, "method": p.Method, "bill_status": status,
	}))
	s.Log.Info().Int("bill_id", billID).Str("method", p.Method).Float64("amount", p.Amount).Str("bill_status", status).Msg("payment recorded")

	return &models.PaymentResult{
		PaymentID: pid, PaymentReference: p.Reference, BillID: billID, BillNumber: number,
		Amount: p.Amount, BillStatus: status,
	}, nil
}

// ProcessPayment records a counter payment against an open bill.
// Overpayment is accepted and closes the bill.
func (s *CashierService) ProcessPayment(ctx context.Context, cashierID, billID int, req models.PaymentRequest) (*models.PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidPayment
	}
	if !cmodels.ValidPaymentMethod(req.Method) {
		return nil, ErrInvalidMethod
	}
	return s.recordPayment(ctx, billID, repository.NewPayment{
		Amount:      utils.RoundMoney(req.Amount),
		Method:      req.Method,
		Reference:   utils.PaymentReference(10),
		ProcessedBy: cashierID,
		Notes:       strings.TrimSpace(req.Notes),
	})
}

// VerifyPaystack confirms an online payment with the gateway and records it once.
func (s *CashierService) VerifyPaystack(ctx context.Context, userID int, req models.PaystackVerifyRequest) (*models.PaymentResult, error) {
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		return nil, ErrReferenceRequired
	}
	var used int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE paystack_reference = ?`, ref).Scan(&used)
	if err != nil {
		return nil, fmt.Errorf("check reference: %w", err)
	}
	if used > 0 {
		return nil, ErrReferenceUsed
	}

	txn, err := s.Gateway.VerifyTransaction(ctx, ref)
	if errors.Is(err, paystack.ErrVerificationFailed) {
		return nil, ErrVerificationFailed
	}
	if err != nil {
		s.Log.Error().Err(err).Str("reference", ref).Msg("paystack verify failed")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return s.recordPayment(ctx, req.BillID, repository.NewPayment{
		Amount:            utils.RoundMoney(txn.Amount),
		Method:            cmodels.PaymentPaystack,
		Reference:         utils.PaymentReference(10),
		PaystackReference: ref,
		ProcessedBy:       userID,
		Notes:             "Paystack " + txn.Channel,
	})
}

// MarkLabPaid takes cash for a pending lab request, raising a paid test bill.
func (s *CashierService) MarkLabPaid(ctx context.Context, cashierID, labID int, amount float64) (*models.PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidPayment
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		patientID sql.NullInt64
		testName  string
		status    string
	)
	err = tx.QueryRowContext(ctx, `SELECT patient_id, test_name, status FROM lab_requests WHERE id = ? FOR UPDATE`, labID).
		Scan(&patientID, &testName, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock lab request: %w", err)
	}
	if status != cmodels.OrderPending || !patientID.Valid {
		return nil, ErrOrderNotPending
	}

	res, err := s.settleOrder(ctx, tx, cashierID, int(patientID.Int64), cmodels.BillTest, "Lab Test: "+testName, amount,
		`UPDATE lab_requests SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, labID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lab payment: %w", err)
	}
	metrics.RecordPayment(cmodels.PaymentCash, res.Amount)
	s.Events.Publish(ctx, events.New(events.LabPaid, map[string]interface{}{
		"lab_request_id": labID, "patient_id": patientID.Int64, "test_name": testName, "bill_id": res.BillID,
	}))
	return res, nil
}

// MarkPrescriptionPaid takes cash for a pending prescription at its recorded price.
func (s *CashierService) MarkPrescriptionPaid(ctx context.Context, cashierID, rxID int) (*models.PaymentResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		patientID  int
		medication string
		price      float64
		status     string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT patient_id, medication_name, price, status FROM prescriptions WHERE id = ? FOR UPDATE`, rxID).
		Scan(&patientID, &medication, &price, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock prescription: %w", err)
	}
	if status != cmodels.OrderPending {
		return nil, ErrOrderNotPending
	}

	res, err := s.settleOrder(ctx, tx, cashierID, patientID, cmodels.BillMedicine, "Medication: "+medication, price,
		`UPDATE prescriptions SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, rxID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prescription payment: %w", err)
	}
	if res.Amount > 0 {
		metrics.RecordPayment(cmodels.PaymentCash, res.Amount)
	}
	s.Events.Publish(ctx, events.New(events.PrescriptionPaid, map[string]interface{}{
		"prescription_id": rxID, "patient_id": patientID, "medication_name": medication, "bill_id": res.BillID,
	}))
	return res, nil
}

// settleOrder moves an order from pending to paid and writes the matching
// paid bill. A cash payment is only written for a non-zero amount.
func (s *CashierService) settleOrder(ctx context.Context, tx *sql.Tx, cashierID, patientID int,
	billType, description string, amount float64, update string, orderID int) (*models.PaymentResult, error) {
	res, err := tx.ExecContext(ctx, update, cmodels.OrderPaid, orderID, cmodels.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrOrderNotPending
	}

	amount = utils.RoundMoney(amount)
	bill, err := repository.InsertBill(ctx, tx, repository.NewBill{
		PatientID: patientID, BillType: billType, Description: description,
		Amount: amount, Status: cmodels.BillStatusPaid, CreatedBy: cashierID,
	})
	if err != nil {
		return nil, err
	}
	out := &models.PaymentResult{BillID: bill.ID, BillNumber: bill.BillNumber, Amount: amount, BillStatus: bill.Status}
	if amount > 0 {
		ref := utils.PaymentReference(8)
		pid, err := repository.InsertPayment(ctx, tx, repository.NewPayment{
			BillID: bill.ID, Amount: amount, Method: cmodels.PaymentCash, Reference: ref, ProcessedBy: cashierID,
		})
		if err != nil {
			return nil, err
		}
		out.PaymentID = pid
		out.PaymentReference = ref
	}
	return out, nil
}
