package models

import "time"

type Medicine struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Quantity     int        `json:"quantity"`
	ReorderLevel int        `json:"reorder_level"`
	PricePerUnit float64    `json:"price_per_unit"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	LastUpdated  time.Time  `json:"last_updated"`
}

func (m Medicine) IsLow() bool { return m.Quantity <= m.ReorderLevel }

type Prescription struct {
	ID             int       `json:"id"`
	PatientID      int       `json:"patient_id"`
	PatientName    string    `json:"patient_name"`
	DoctorName     *string   `json:"doctor_name,omitempty"`
	AppointmentID  *int      `json:"appointment_id,omitempty"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	Duration       string    `json:"duration"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type Dashboard struct {
	Prescriptions []Prescription `json:"prescriptions"`
	Inventory     []Medicine     `json:"inventory"`
	TotalDrugs    int            `json:"total_drugs"`
	LowStock      int            `json:"low_stock"`
	PendingCount  int            `json:"pending_count"`
	TodaySales    float64        `json:"today_sales"`
}

type MedicineRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ReorderLevel *int    `json:"reorder_level"`
	ExpiryDate   string  `json:"expiry_date"` // YYYY-MM-DD, optional
}

type DispenseResult struct {
	PrescriptionID    int    `json:"prescription_id"`
	MedicationName    string `json:"medication_name"`
	QuantityDispensed int    `json:"quantity_dispensed"`
	Tracked           bool   `json:"tracked"`
	RemainingStock    *int   `json:"remaining_stock,omitempty"`
}

type InventoryAlerts struct {
	Expired      []Medicine `json:"expired"`
	ExpiringSoon []Medicine `json:"expiring_soon"`
	LowStock     []Medicine `json:"low_stock"`
}

type InventoryLine struct {
	Medicine
	StockStatus string `json:"stock_status"`
}

type DispensingLog struct {
	ID                int       `json:"id"`
	PharmacistID      *int      `json:"pharmacist_id,omitempty"`
	PharmacistName    *string   `json:"pharmacist_name,omitempty"`
	PatientName       string    `json:"patient_name"`
	MedicationName    string    `json:"medication_name"`
	QuantityDispensed int       `json:"quantity_dispensed"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
