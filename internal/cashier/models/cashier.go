package models

import "time"

type Bill struct {
	ID          int       `json:"id"`
	BillNumber  string    `json:"bill_number"`
	PatientID   int       `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	BillType    string    `json:"bill_type"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Discount    float64   `json:"discount"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedBy   *int      `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Payment struct {
	ID                int       `json:"id"`
	BillID            int       `json:"bill_id"`
	BillNumber        string    `json:"bill_number,omitempty"`
	PaymentReference  string    `json:"payment_reference"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"payment_method"`
	Status            string    `json:"status"`
	PaystackReference *string   `json:"paystack_reference,omitempty"`
	ProcessedBy       *int      `json:"processed_by,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	TransactionDate   time.Time `json:"transaction_date"`
}

type BillDetail struct {
	Bill              Bill      `json:"bill"`
	Payments          []Payment `json:"payments"`
	AmountPaid        float64   `json:"amount_paid"`
	Balance           float64   `json:"balance"`
	PaystackPublicKey string    `json:"paystack_public_key,omitempty"`
}

type Dashboard struct {
	TotalBills     int       `json:"total_bills"`
	PendingBills   int       `json:"pending_bills"`
	PaidBills      int       `json:"paid_bills"`
	TodayRevenue   float64   `json:"today_revenue"`
	MonthRevenue   float64   `json:"month_revenue"`
	RecentBills    []Bill    `json:"recent_bills"`
	RecentPayments []Payment `json:"recent_payments"`
}

type CreateBillRequest struct {
	PatientID      int     `json:"patient_id"`
	BillType       string  `json:"bill_type"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Discount       float64 `json:"discount"`
	CollectPayment bool    `json:"collect_payment"`
}

type PaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"payment_method"`
	Notes  string  `json:"notes"`
}

type PaystackVerifyRequest struct {
	Reference string `json:"reference"`
	BillID    int    `json:"bill_id"`
}

type LabPaymentRequest struct {
	Amount float64 `json:"amount"`
}

type PaymentResult struct {
	PaymentID        int     `json:"payment_id"`
	PaymentReference string  `json:"payment_reference"`
	BillID           int     `json:"bill_id"`
	BillNumber       string  `json:"bill_number,omitempty"`
	Amount           float64 `json:"amount"`
	BillStatus       string  `json:"bill_status"`
}

type MethodTotal struct {
	Method string  `json:"payment_method"`
	Total  float64 `json:"total"`
	Count  int     `json:"count"`
}

type DailyReport struct {
	Date     string        `json:"date"`
	Total    float64       `json:"total"`
	Count    int           `json:"count"`
	ByMethod []MethodTotal `json:"by_method"`
	Payments []Payment     `json:"payments"`
}
