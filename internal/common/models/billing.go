package models

const (
	BillConsultation = "consultation"
	BillTreatment    = "treatment"
	BillMedicine     = "medicine"
	BillTest         = "test"
	BillProcedure    = "procedure"
	BillOther        = "other"
)

const (
	BillStatusPending       = "pending"
	BillStatusPaid          = "paid"
	BillStatusPartiallyPaid = "partially_paid"
	BillStatusCancelled     = "cancelled"
)

const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentPaystack     = "paystack"
	PaymentBankTransfer = "bank_transfer"
	PaymentInsurance    = "insurance"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Order statuses shared by lab requests and prescriptions.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCompleted = "completed"
	OrderDispensed = "dispensed"
)

func ValidBillType(t string) bool {
	switch t {
	case BillConsultation, BillTreatment, BillMedicine, BillTest, BillProcedure, BillOther:
		return true
	}
	return false
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPaystack, PaymentBankTransfer, PaymentInsurance:
		return true
	}
	return false
}

// BillStatusFor derives a bill status from the sum of its successful payments.
func BillStatusFor(total, paid float64) string {
	switch {
	case paid >= total:
		return BillStatusPaid
	case paid > 0:
		return BillStatusPartiallyPaid
	}
	return BillStatusPending
}
