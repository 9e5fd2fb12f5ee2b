package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

func randomHex(n int) string {
	h := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(h[:n])
}

// BillNumber returns BILL followed by 8 upper-case hex characters.
func BillNumber() string { return "BILL" + randomHex(8) }

// PaymentReference returns PAY followed by n upper-case hex characters (n <= 32).
func PaymentReference(n int) string { return "PAY" + randomHex(n) }

// PatientCode is the identifier assigned on registration.
func PatientCode() string { return "PAT-" + randomHex(6) }

// FallbackPatientCode is used when a patient profile is created lazily.
func FallbackPatientCode(userID int) string { return fmt.Sprintf("PAT%05d", userID) }

func DoctorCode(userID int) string  { return fmt.Sprintf("DOC%05d", userID) }
func LicenseCode(userID int) string { return fmt.Sprintf("LIC%05d", userID) }

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
