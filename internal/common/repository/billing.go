package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrInvalidAmount = errors.New("amount and discount must be non-negative and discount cannot exceed amount")
	ErrInvalidBill   = errors.New("invalid bill type")
)

type NewBill struct {
	PatientID     int
	AppointmentID int
	BillType      string
	Description   string
	Amount        float64
	Discount      float64
	Status        string
	CreatedBy     int
}

type CreatedBill struct {
	ID          int     `json:"id"`
	BillNumber  string  `json:"bill_number"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// InsertBill writes a bill with total_amount = amount - discount.
func InsertBill(ctx context.Context, db Execer, b NewBill) (*CreatedBill, error) {
	if !models.ValidBillType(b.BillType) {
		return nil, ErrInvalidBill
	}
	if b.Amount < 0 || b.Discount < 0 || b.Discount > b.Amount {
		return nil, ErrInvalidAmount
	}
	if b.Status == "" {
		b.Status = models.BillStatusPending
	}
	total := utils.RoundMoney(b.Amount - b.Discount)
	number := utils.BillNumber()

	res, err := db.ExecContext(ctx,
		`INSERT INTO bills (bill_number, patient_id, bill_type, description, amount, discount, total_amount, status,
		                    created_by, appointment_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		number, b.PatientID, b.BillType, b.Description, b.Amount, b.Discount, total, b.Status,
		nullableID(b.CreatedBy), nullableID(b.AppointmentID))
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &CreatedBill{ID: int(id), BillNumber: number, TotalAmount: total, Status: b.Status}, nil
}

type NewPayment struct {
	BillID            int
	Amount            float64
	Method            string
	Reference         string
	PaystackReference string
	ProcessedBy       int
	Notes             string
}

// HasAppointmentBill reports whether a bill of the given type was already raised for an appointment.
func HasAppointmentBill(ctx context.Context, db Execer, appointmentID int, billType string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills WHERE appointment_id = ? AND bill_type = ?`, appointmentID, billType).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("appointment bills: %w", err)
	}
	return n > 0, nil
}

// InsertPayment records a successful payment and returns its id.
func InsertPayment(ctx context.Context, db Execer, p NewPayment) (int, error) {
	var paystackRef interface{}
	if p.PaystackReference != "" {
		paystackRef = p.PaystackReference
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO payments (bill_id, payment_reference, amount, payment_method, status, paystack_reference, processed_by, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.BillID, p.Reference, p.Amount, p.Method, models.PaymentStatusSuccess, paystackRef, nullableID(p.ProcessedBy), p.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// RecomputeBillStatus sets the bill status from the sum of its successful payments.
func RecomputeBillStatus(ctx context.Context, db Execer, billID int) (string, error) {
	var total, paid float64
	err := db.QueryRowContext(ctx,
		`SELECT b.total_amount, COALESCE(SUM(p.amount), 0)
		 FROM bills b LEFT JOIN payments p ON p.bill_id = b.id AND p.status = 'success'
		 WHERE b.id = ?
		 GROUP BY b.id, b.total_amount`, billID).Scan(&total, &paid)
	if err != nil {
		return "", fmt.Errorf("sum payments: %w", err)
	}
	status := models.BillStatusFor(total, paid)
	if _, err := db.ExecContext(ctx, `UPDATE bills SET status = ? WHERE id = ?`, status, billID); err != nil {
		return "", fmt.Errorf("update bill status: %w", err)
	}
	return status, nil
}

func nullableID(id int) interface{} {
	if id <= 0 {
		return nil
	}
	return id
}
