package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/internal/accounts/models"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/pkg/utils"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

const mysqlDuplicateEntry = 1062

type AccountService struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
	Log       zerolog.Logger
}

func NewAccountService(db *sql.DB, secret string, ttl time.Duration, log zerolog.Logger) *AccountService {
	return &AccountService{DB: db, JWTSecret: secret, TokenTTL: ttl, Log: log}
}

// Register creates a user with its profile. Self-registration always yields a
// patient; only a manager may pick another role.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest, creatorRole string) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: username is required and password must be at least 8 characters", ErrInvalidInput)
	}
	role := cmodels.RolePatient
	if creatorRole == cmodels.RoleManager && req.Role != "" {
		if !cmodels.ValidRole(req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
		}
		role = req.Role
	}
	var dob interface{}
	if req.DateOfBirth != "" {
		d, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalidInput)
		}
		dob = d
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, email, role, phone_number, address, date_of_birth)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Username, hash, req.FirstName, req.LastName, req.Email, role,
		nullString(req.PhoneNumber), nullString(req.Address), dob)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id64, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	id := int(id64)

	if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES (?)`, id); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	if role == cmodels.RolePatient {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patients (user_id, patient_id) VALUES (?, ?)`, id, utils.PatientCode()); err != nil {
			return nil, fmt.Errorf("insert patient: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.Log.Info().Int("user_id", id).Str("role", role).Msg("user registered")
	return &models.User{
		ID: id, Username: req.Username, FirstName: req.FirstName, LastName: req.LastName,
		Email: req.Email, Role: role, IsActive: true, CreatedAt: time.Now().UTC(),
	}, nil
}

// Login checks the password and issues a signed token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	var (
		u    models.User
		hash string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, first_name, last_name, email, role, is_active, created_at
		 FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &hash, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.CheckPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveAccount
	}

	exp := time.Now().Add(s.TokenTTL)
	token, err := utils.GenerateJWTToken(s.JWTSecret, u.ID, u.Role, u.Username, exp)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := repository.LogActivity(ctx, s.DB, u.ID, "Login", "User logged in"); err != nil {
		s.Log.Warn().Err(err).Int("user_id", u.ID).Msg("activity log skipped")
	}

	redirect, _ := cmodels.DashboardPath(u.Role)
	return &models.LoginResult{Token: token, ExpiresAt: exp.UTC(), User: u, Redirect: redirect}, nil
}

// Logout only records the event; tokens are stateless and dropped by the client.
func (s *AccountService) Logout(ctx context.Context, userID int) error {
	return repository.LogActivity(ctx, s.DB, userID, "Logout", "User logged out")
}

func (s *AccountService) Profile(ctx context.Context, userID int) (*models.UserProfile, error) {
	var (
		out       models.UserProfile
		p         models.Profile
		hasProf   sql.NullBool
		patientID sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.first_name, u.last_name, u.email, u.role, u.phone_number, u.address,
		        u.date_of_birth, u.is_active, u.created_at,
		        pr.is_verified, pr.emergency_contact, pr.blood_group, pr.medical_history, pa.patient_id
		 FROM users u
		 LEFT JOIN profiles pr ON pr.user_id = u.id
		 LEFT JOIN patients pa ON pa.user_id = u.id
		 WHERE u.id = ?`, userID).
		Scan(&out.User.ID, &out.User.Username, &out.User.FirstName, &out.User.LastName, &out.User.Email,
			&out.User.Role, &out.User.PhoneNumber, &out.User.Address, &out.User.DateOfBirth, &out.User.IsActive,
			&out.User.CreatedAt, &hasProf, &p.EmergencyContact, &p.BloodGroup, &p.MedicalHistory, &patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if hasProf.Valid {
		p.IsVerified = hasProf.Bool
		out.Profile = &p
	}
	if patientID.Valid {
		out.PatientID = &patientID.String
	}
	return &out, nil
}

// SubmitContact stores a message from the public contact form.
func (s *AccountService) SubmitContact(ctx context.Context, req models.ContactRequest) (int, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return 0, fmt.Errorf("%w: name, email and message are required", ErrInvalidInput)
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, subject, message) VALUES (?, ?, ?, ?)`,
		req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		return 0, fmt.Errorf("insert contact message: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
