package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/manager/models"
)

var (
	ErrInvalidSettings = errors.New("hospital name cannot be empty")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyResponse   = errors.New("response cannot be empty")
)

// SettingsService owns the single hospital_settings row and the
// manager's inbox and audit feed.
type SettingsService struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func NewSettingsService(db *sql.DB, log zerolog.Logger) *SettingsService {
	return &SettingsService{DB: db, Log: log}
}

func (s *SettingsService) Settings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	err := s.DB.QueryRowContext(ctx,
		`SELECT hospital_name, maintenance_mode, updated_at FROM hospital_settings WHERE id = 1`).
		Scan(&out.HospitalName, &out.MaintenanceMode, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &out, nil
}

// MaintenanceMode reports whether non-manager traffic should be turned away.
func (s *SettingsService) MaintenanceMode(ctx context.Context) (bool, error) {
	var on bool
	err := s.DB.QueryRowContext(ctx, `SELECT maintenance_mode FROM hospital_settings WHERE id = 1`).Scan(&on)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return on, err
}

func (s *SettingsService) UpdateSettings(ctx context.Context, managerID int, req models.SettingsRequest) (*models.Settings, error) {
	var (
		sets    []string
		args    []interface{}
		changes []string
	)
	if req.HospitalName != nil {
		name := strings.TrimSpace(*req.HospitalName)
		if name == "" {
			return nil, ErrInvalidSettings
		}
		sets = append(sets, "hospital_name = ?")
		args = append(args, name)
		changes = append(changes, "hospital_name="+name)
	}
	if req.MaintenanceMode != nil {
		sets = append(sets, "maintenance_mode = ?")
		args = append(args, *req.MaintenanceMode)
		changes = append(changes, fmt.Sprintf("maintenance_mode=%t", *req.MaintenanceMode))
	}
	if len(sets) > 0 {
		if _, err := s.DB.ExecContext(ctx,
			`UPDATE hospital_settings SET `+strings.Join(sets, ", ")+` WHERE id = 1`, args...); err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
		if err := repository.LogActivity(ctx, s.DB, managerID, "Update settings", strings.Join(changes, ", ")); err != nil {
			s.Log.Warn().Err(err).Msg("settings change not logged")
		}
		s.Log.Info().Int("manager_id", managerID).Strs("changes", changes).Msg("hospital settings updated")
	}
	return s.Settings(ctx)
}

// ActivityLogs returns the most recent audit entries with their badge color.
func (s *SettingsService) ActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT l.id, l.user_id, u.username, l.action, COALESCE(l.details, ''), l.timestamp
		 FROM activity_logs l JOIN users u ON u.id = l.user_id
		 ORDER BY l.timestamp DESC, l.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()
	out := []models.ActivityLog{}
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Username, &l.Action, &l.Details, &l.Timestamp); err != nil {
			return nil, err
		}
		l.ActionColor = repository.ActionColor(l.Action)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SettingsService) Messages(ctx context.Context) ([]models.Message, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, email, subject, message, response, is_read, is_resolved, created_at
		 FROM contact_messages ORDER BY is_resolved, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Response,
			&m.IsRead, &m.IsResolved, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RespondMessage stores the reply and closes the message.
func (s *SettingsService) RespondMessage(ctx context.Context, managerID, messageID int, response string) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return ErrEmptyResponse
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE contact_messages SET response = ?, is_read = 1, is_resolved = 1 WHERE id = ?`, response, messageID)
	if err != nil {
		return fmt.Errorf("respond message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	if err := repository.LogActivity(ctx, s.DB, managerID, "Respond message", fmt.Sprintf("message %d", messageID)); err != nil {
		s.Log.Warn().Err(err).Msg("message response not logged")
	}
	return nil
}

// StaffDashboard returns the caller's staff record, nil when none exists.
func (s *SettingsService) StaffDashboard(ctx context.Context, userID int) (*models.StaffDashboard, error) {
	out := &models.StaffDashboard{}
	var (
		st      models.StaffMember
		staffID sql.NullInt64
		code    sql.NullString
		dept    sql.NullString
		pos     sql.NullString
		joined  sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT CONCAT(u.first_name, ' ', u.last_name), s.id, s.staff_id, s.department, s.position, s.joining_date
		 FROM users u LEFT JOIN staff s ON s.user_id = u.id
		 WHERE u.id = ?`, userID).Scan(&out.Name, &staffID, &code, &dept, &pos, &joined)
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	if staffID.Valid {
		st.ID = int(staffID.Int64)
		st.StaffID = code.String
		st.Department = dept.String
		st.Position = pos.String
		st.JoiningDate = joined.Time
		out.Staff = &st
	}
	return out, nil
}
