package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/internal/cashier/models"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
	"github.com/c14220110/hms-backend/pkg/paystack"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrBillNotFound    = errors.New("bill not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrForbidden       = errors.New("you can only view your own bills")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)

// Gateway verifies card payments made through the online checkout.
type Gateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type CashierService struct {
	DB                *sql.DB
	Gateway           Gateway
	PaystackPublicKey string
	Events            events.Publisher
	Log               zerolog.Logger
	now               func() time.Time
}

func NewCashierService(db *sql.DB, gw Gateway, publicKey string, pub events.Publisher, log zerolog.Logger) *CashierService {
	return &CashierService{DB: db, Gateway: gw, PaystackPublicKey: publicKey, Events: pub, Log: log, now: time.Now}
}

const billColumns = `b.id, b.bill_number, b.patient_id, CONCAT(u.first_name, ' ', u.last_name), b.bill_type, b.description,
	b.amount, b.discount, b.total_amount, b.status, b.created_by, b.created_at
	FROM bills b
	JOIN patients p ON p.id = b.patient_id
	JOIN users u ON u.id = p.user_id`

const paymentColumns = `py.id, py.bill_id, b.bill_number, py.payment_reference, py.amount, py.payment_method, py.status,
	py.paystack_reference, py.processed_by, py.notes, py.transaction_date
	FROM payments py JOIN bills b ON b.id = py.bill_id`

func (s *CashierService) bills(ctx context.Context, where string, args ...interface{}) ([]models.Bill, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+billColumns+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()
	out := []models.Bill{}
	for rows.Next() {
		var b models.Bill
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.PatientID, &b.PatientName, &b.BillType, &b.Description,
			&b.Amount, &b.Discount, &b.TotalAmount, &b.Status, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *CashierService) payments(ctx context.Context, where string, args ...interface{}) ([]models.Payment, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+paymentColumns+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.BillNumber, &p.PaymentReference, &p.Amount, &p.PaymentMethod,
			&p.Status, &p.PaystackReference, &p.ProcessedBy, &p.Notes, &p.TransactionDate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CashierService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = ?), 0), COALESCE(SUM(status = ?), 0) FROM bills`,
		cmodels.BillStatusPending, cmodels.BillStatusPaid).Scan(&out.TotalBills, &out.PendingBills, &out.PaidBills)
	if err != nil {
		return nil, fmt.Errorf("bill counts: %w", err)
	}
	err = s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN DATE(transaction_date) = CURDATE() THEN amount END), 0),
		        COALESCE(SUM(CASE WHEN YEAR(transaction_date) = YEAR(CURDATE())
		                          AND MONTH(transaction_date) = MONTH(CURDATE()) THEN amount END), 0)
		 FROM payments WHERE status = ?`, cmodels.PaymentStatusSuccess).Scan(&out.TodayRevenue, &out.MonthRevenue)
	if err != nil {
		return nil, fmt.Errorf("revenue totals: %w", err)
	}
	if out.RecentBills, err = s.bills(ctx, `ORDER BY b.created_at DESC LIMIT 10`); err != nil {
		return nil, err
	}
	if out.RecentPayments, err = s.payments(ctx,
		`WHERE py.status = ? ORDER BY py.transaction_date DESC LIMIT 10`, cmodels.PaymentStatusSuccess); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBill raises a bill. With CollectPayment the full amount is taken in
// cash on the spot and the bill is closed as paid.
func (s *CashierService) CreateBill(ctx context.Context, cashierID int, req models.CreateBillRequest) (*models.BillDetail, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE id = ?`, req.PatientID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	status := cmodels.BillStatusPending
	if req.CollectPayment {
		status = cmodels.BillStatusPaid
	}
	bill, err := repository.InsertBill(ctx, tx, repository.NewBill{
		PatientID:   req.PatientID,
		BillType:    req.BillType,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Discount:    req.Discount,
		Status:      status,
		CreatedBy:   cashierID,
	})
	if err != nil {
		return nil, err
	}

	out := &models.BillDetail{
		Bill: models.Bill{
			ID: bill.ID, BillNumber: bill.BillNumber, PatientID: req.PatientID, BillType: req.BillType,
			Description: req.Description, Amount: req.Amount, Discount: req.Discount,
			TotalAmount: bill.TotalAmount, Status: bill.Status, CreatedBy: &cashierID, CreatedAt: s.now().UTC(),
		},
		Payments: []models.Payment{},
		Balance:  bill.TotalAmount,
	}
	if req.CollectPayment {
		ref := utils.PaymentReference(8)
		pid, err := repository.InsertPayment(ctx, tx, repository.NewPayment{
			BillID: bill.ID, Amount: bill.TotalAmount, Method: cmodels.PaymentCash,
			Reference: ref, ProcessedBy: cashierID,
		})
		if err != nil {
			return nil, err
		}
		out.Payments = append(out.Payments, models.Payment{
			ID: pid, BillID: bill.ID, BillNumber: bill.BillNumber, PaymentReference: ref, Amount: bill.TotalAmount,
			PaymentMethod: cmodels.PaymentCash, Status: cmodels.PaymentStatusSuccess, ProcessedBy: &cashierID,
			TransactionDate: s.now().UTC(),
		})
		out.AmountPaid = bill.TotalAmount
		out.Balance = 0
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bill: %w", err)
	}

	s.Events.Publish(ctx, events.New(events.BillCreated, map[string]interface{}{
		"bill_id": bill.ID, "bill_number": bill.BillNumber, "patient_id": req.PatientID, "status": bill.Status,
	}))
	if req.CollectPayment {
		metrics.RecordPayment(cmodels.PaymentCash, bill.TotalAmount)
		s.Events.Publish(ctx, events.New(events.BillPaymentRecorded, map[string]interface{}{
			"bill_id": bill.ID, "amount": bill.TotalAmount, "method": cmodels.PaymentCash, "bill_status": bill.Status,
		}))
	}
	s.Log.Info().Str("bill_number", bill.BillNumber).Float64("total", bill.TotalAmount).Bool("paid", req.CollectPayment).Msg("bill created")
	return out, nil
}

// BillDetail returns a bill with its payments. Patients may only see their own bills.
func (s *CashierService) BillDetail(ctx context.Context, billID int, viewerID int, viewerRole string) (*models.BillDetail, error) {
	bills, err := s.bills(ctx, `WHERE b.id = ?`, billID)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, ErrBillNotFound
	}
	if viewerRole == cmodels.RolePatient {
		var owner int
		if err := s.DB.QueryRowContext(ctx, `SELECT user_id FROM patients WHERE id = ?`, bills[0].PatientID).Scan(&owner); err != nil {
			return nil, fmt.Errorf("bill owner: %w", err)
		}
		if owner != viewerID {
			return nil, ErrForbidden
		}
	}

	out := &models.BillDetail{Bill: bills[0], PaystackPublicKey: s.PaystackPublicKey}
	if out.Payments, err = s.payments(ctx, `WHERE py.bill_id = ? ORDER BY py.transaction_date DESC`, billID); err != nil {
		return nil, err
	}
	for _, p := range out.Payments {
		if p.Status == cmodels.PaymentStatusSuccess {
			out.AmountPaid += p.Amount
		}
	}
	out.AmountPaid = utils.RoundMoney(out.AmountPaid)
	out.Balance = utils.RoundMoney(out.Bill.TotalAmount - out.AmountPaid)
	if out.Balance < 0 {
		out.Balance = 0
	}
	return out, nil
}

// Bills lists bills newest first, optionally by status.
func (s *CashierService) Bills(ctx context.Context, status string) ([]models.Bill, error) {
	if status != "" {
		return s.bills(ctx, `WHERE b.status = ? ORDER BY b.created_at DESC`, status)
	}
	return s.bills(ctx, `ORDER BY b.created_at DESC`)
}

// Payments lists successful payments newest first.
func (s *CashierService) Payments(ctx context.Context) ([]models.Payment, error) {
	return s.payments(ctx, `WHERE py.status = ? ORDER BY py.transaction_date DESC`, cmodels.PaymentStatusSuccess)
}

// DailyReport totals successful payments for one day, per payment method.
func (s *CashierService) DailyReport(ctx context.Context, date string) (*models.DailyReport, error) {
	day := s.now()
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = d
	}
	date = day.Format("2006-01-02")

	out := &models.DailyReport{Date: date, ByMethod: []models.MethodTotal{}}
	var err error
	if out.Payments, err = s.payments(ctx,
		`WHERE py.status = ? AND DATE(py.transaction_date) = ? ORDER BY py.transaction_date`,
		cmodels.PaymentStatusSuccess, date); err != nil {
		return nil, err
	}
	byMethod := map[string]*models.MethodTotal{}
	for _, p := range out.Payments {
		mt, ok := byMethod[p.PaymentMethod]
		if !ok {
			mt = &models.MethodTotal{Method: p.PaymentMethod}
			byMethod[p.PaymentMethod] = mt
		}
		mt.Total += p.Amount
		mt.Count++
		out.Total += p.Amount
		out.Count++
	}
	for _, m := range []string{cmodels.PaymentCash, cmodels.PaymentCard, cmodels.PaymentPaystack,
		cmodels.PaymentBankTransfer, cmodels.PaymentInsurance} {
		if mt, ok := byMethod[m]; ok {
			mt.Total = utils.RoundMoney(mt.Total)
			out.ByMethod = append(out.ByMethod, *mt)
		}
	}
	out.Total = utils.RoundMoney(out.Total)
	return out, nil
}
