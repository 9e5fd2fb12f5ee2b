package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	accounts "github.com/c14220110/hms-backend/internal/accounts/models"
	cashier "github.com/c14220110/hms-backend/internal/cashier/models"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	doctors "github.com/c14220110/hms-backend/internal/doctors/models"
	"github.com/c14220110/hms-backend/internal/manager/models"
	patients "github.com/c14220110/hms-backend/internal/patients/models"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrSelfChange   = errors.New("managers cannot change their own role or status")
	ErrInvalidRange = errors.New("dates must be YYYY-MM-DD and start_date cannot be after end_date")
)

// Roles counted as staff on the manager dashboard.
var staffRoles = []interface{}{
	cmodels.RoleCashier, cmodels.RoleStaff, cmodels.RolePharmacist, cmodels.RoleLabTech, cmodels.RoleNurse,
}

type ManagerService struct {
	DB  *sql.DB
	Log zerolog.Logger
	now func() time.Time
}

func NewManagerService(db *sql.DB, log zerolog.Logger) *ManagerService {
	return &ManagerService{DB: db, Log: log, now: time.Now}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *ManagerService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard

	args := append([]interface{}{cmodels.RoleDoctor}, staffRoles...)
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(role = ?), 0), COALESCE(SUM(role IN (`+placeholders(len(staffRoles))+`)), 0),
		        (SELECT COUNT(*) FROM patients)
		 FROM users`, args...).Scan(&out.TotalUsers, &out.TotalDoctors, &out.TotalStaff, &out.TotalPatients)
	if err != nil {
		return nil, fmt.Errorf("user counts: %w", err)
	}

	open := make([]interface{}, 0, len(cmodels.OpenVisitStatuses))
	for _, st := range cmodels.OpenVisitStatuses {
		open = append(open, string(st))
	}
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(appointment_date = CURDATE()), 0),
		        COALESCE(SUM(status IN (`+placeholders(len(open))+`)), 0)
		 FROM appointments`, open...).Scan(&out.TotalAppointments, &out.TodayAppointments, &out.OpenAppointments)
	if err != nil {
		return nil, fmt.Errorf("appointment counts: %w", err)
	}

	monthStart := firstOfMonth(s.now()).Format("2006-01-02")
	err = s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(CASE WHEN DATE(transaction_date) >= ? THEN amount END), 0),
		        (SELECT COALESCE(SUM(total_amount), 0) FROM bills WHERE status = ?)
		 FROM payments WHERE status = ?`,
		monthStart, cmodels.BillStatusPending, cmodels.PaymentStatusSuccess).
		Scan(&out.TotalRevenue, &out.MonthRevenue, &out.PendingBills)
	if err != nil {
		return nil, fmt.Errorf("revenue totals: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT a.id, CONCAT(pu.first_name, ' ', pu.last_name), CONCAT(du.first_name, ' ', du.last_name),
		        a.appointment_date, a.status
		 FROM appointments a
		 JOIN patients p ON p.id = a.patient_id
		 JOIN users pu ON pu.id = p.user_id
		 JOIN doctors d ON d.id = a.doctor_id
		 JOIN users du ON du.id = d.user_id
		 ORDER BY a.created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("recent appointments: %w", err)
	}
	defer rows.Close()
	out.RecentAppointments = []models.RecentAppointment{}
	for rows.Next() {
		var a models.RecentAppointment
		if err := rows.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.AppointmentDate, &a.Status); err != nil {
			return nil, err
		}
		out.RecentAppointments = append(out.RecentAppointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out.RecentPayments, err = s.payments(ctx,
		`WHERE py.status = ? ORDER BY py.transaction_date DESC LIMIT 5`, cmodels.PaymentStatusSuccess); err != nil {
		return nil, err
	}
	out.TotalRevenue = utils.RoundMoney(out.TotalRevenue)
	out.MonthRevenue = utils.RoundMoney(out.MonthRevenue)
	return &out, nil
}

func (s *ManagerService) Users(ctx context.Context) ([]accounts.User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, username, first_name, last_name, email, role, phone_number, is_active, created_at
		 FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	out := []accounts.User{}
	for rows.Next() {
		var u accounts.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Role,
			&u.PhoneNumber, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserRole changes a user's role and records it in the activity log.
func (s *ManagerService) UpdateUserRole(ctx context.Context, managerID, userID int, role string) error {
	if !cmodels.ValidRole(role) {
		return ErrInvalidRole
	}
	if managerID == userID {
		return ErrSelfChange
	}
	return s.updateUser(ctx, managerID, userID, func(tx *sql.Tx, username, oldRole string) (string, string, error) {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, userID); err != nil {
			return "", "", fmt.Errorf("update role: %w", err)
		}
		return "Role change", fmt.Sprintf("%s: %s -> %s", username, oldRole, role), nil
	})
}

// SetUserActive enables or disables a login and records it in the activity log.
func (s *ManagerService) SetUserActive(ctx context.Context, managerID, userID int, active bool) error {
	if managerID == userID {
		return ErrSelfChange
	}
	return s.updateUser(ctx, managerID, userID, func(tx *sql.Tx, username, _ string) (string, string, error) {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, userID); err != nil {
			return "", "", fmt.Errorf("update status: %w", err)
		}
		if active {
			return "Activate user", username, nil
		}
		return "Deactivate user", username, nil
	})
}

func (s *ManagerService) updateUser(ctx context.Context, managerID, userID int,
	apply func(tx *sql.Tx, username, role string) (string, string, error)) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var username, role string
	err = tx.QueryRowContext(ctx, `SELECT username, role FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&username, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	action, details, err := apply(tx, username, role)
	if err != nil {
		return err
	}
	if err := repository.LogActivity(ctx, tx, managerID, action, details); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user update: %w", err)
	}
	s.Log.Info().Int("manager_id", managerID).Int("user_id", userID).Str("action", action).Msg(details)
	return nil
}

func (s *ManagerService) Doctors(ctx context.Context) ([]doctors.Doctor, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT d.id, d.user_id, d.doctor_id, CONCAT(u.first_name, ' ', u.last_name), d.specialization,
		        d.license_number, d.qualification, d.experience_years, d.consultation_fee
		 FROM doctors d JOIN users u ON u.id = d.user_id
		 ORDER BY u.last_name`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()
	out := []doctors.Doctor{}
	for rows.Next() {
		var d doctors.Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.DoctorID, &d.Name, &d.Specialization, &d.LicenseNumber,
			&d.Qualification, &d.ExperienceYears, &d.ConsultationFee); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *ManagerService) Patients(ctx context.Context) ([]patients.Patient, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.patient_id, CONCAT(u.first_name, ' ', u.last_name), p.blood_group,
		        p.height, p.weight, p.allergies, p.emergency_contact_number, p.is_admitted
		 FROM patients p JOIN users u ON u.id = p.user_id
		 ORDER BY p.patient_id`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	out := []patients.Patient{}
	for rows.Next() {
		var p patients.Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.PatientID, &p.Name, &p.BloodGroup, &p.Height, &p.Weight,
			&p.Allergies, &p.EmergencyContactNumber, &p.IsAdmitted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// FinancialReport summarises successful payments and raised bills between two
// dates inclusive. It defaults to the current month so far.
func (s *ManagerService) FinancialReport(ctx context.Context, start, end string) (*models.FinancialReport, error) {
	today := s.now()
	from, to := firstOfMonth(today), today
	var err error
	if start != "" {
		if from, err = time.Parse("2006-01-02", start); err != nil {
			return nil, ErrInvalidRange
		}
	}
	if end != "" {
		if to, err = time.Parse("2006-01-02", end); err != nil {
			return nil, ErrInvalidRange
		}
	}
	fromStr, toStr := from.Format("2006-01-02"), to.Format("2006-01-02")
	if fromStr > toStr {
		return nil, ErrInvalidRange
	}

	out := &models.FinancialReport{StartDate: fromStr, EndDate: toStr, ByMethod: []cashier.MethodTotal{}}
	if out.Payments, err = s.payments(ctx,
		`WHERE py.status = ? AND DATE(py.transaction_date) BETWEEN ? AND ? ORDER BY py.transaction_date DESC`,
		cmodels.PaymentStatusSuccess, fromStr, toStr); err != nil {
		return nil, err
	}
	index := map[string]int{}
	for _, p := range out.Payments {
		i, ok := index[p.PaymentMethod]
		if !ok {
			i = len(out.ByMethod)
			index[p.PaymentMethod] = i
			out.ByMethod = append(out.ByMethod, cashier.MethodTotal{Method: p.PaymentMethod})
		}
		out.ByMethod[i].Total = utils.RoundMoney(out.ByMethod[i].Total + p.Amount)
		out.ByMethod[i].Count++
		out.TotalRevenue += p.Amount
	}
	out.TotalRevenue = utils.RoundMoney(out.TotalRevenue)

	rows, err := s.DB.QueryContext(ctx,
		`SELECT b.id, b.bill_number, b.patient_id, CONCAT(u.first_name, ' ', u.last_name), b.bill_type, b.description,
		        b.amount, b.discount, b.total_amount, b.status, b.created_by, b.created_at
		 FROM bills b
		 JOIN patients p ON p.id = b.patient_id
		 JOIN users u ON u.id = p.user_id
		 WHERE DATE(b.created_at) BETWEEN ? AND ?
		 ORDER BY b.created_at DESC`, fromStr, toStr)
	if err != nil {
		return nil, fmt.Errorf("bills in range: %w", err)
	}
	defer rows.Close()
	out.Bills = []cashier.Bill{}
	for rows.Next() {
		var b cashier.Bill
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.PatientID, &b.PatientName, &b.BillType, &b.Description,
			&b.Amount, &b.Discount, &b.TotalAmount, &b.Status, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		out.Bills = append(out.Bills, b)
	}
	return out, rows.Err()
}

func (s *ManagerService) payments(ctx context.Context, where string, args ...interface{}) ([]cashier.Payment, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT py.id, py.bill_id, b.bill_number, py.payment_reference, py.amount, py.payment_method, py.status,
		        py.paystack_reference, py.processed_by, py.notes, py.transaction_date
		 FROM payments py JOIN bills b ON b.id = py.bill_id `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	out := []cashier.Payment{}
	for rows.Next() {
		var p cashier.Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.BillNumber, &p.PaymentReference, &p.Amount, &p.PaymentMethod,
			&p.Status, &p.PaystackReference, &p.ProcessedBy, &p.Notes, &p.TransactionDate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
