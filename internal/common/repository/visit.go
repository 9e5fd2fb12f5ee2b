package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/metrics"
)

var (
	ErrVisitNotFound     = errors.New("appointment not found")
	ErrInvalidStatus     = errors.New("invalid appointment status")
	ErrInvalidTransition = errors.New("appointment is not in a state that allows this change")
)

// VisitStatus reads the current status of an appointment.
func VisitStatus(ctx context.Context, db Execer, appointmentID int) (models.VisitStatus, error) {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM appointments WHERE id = ?`, appointmentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrVisitNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read appointment status: %w", err)
	}
	return models.VisitStatus(status), nil
}

// TransitionVisit moves an appointment from one status to another. The write is
// conditional on the current status, so a concurrent move makes it fail with
// ErrInvalidTransition instead of overwriting.
func TransitionVisit(ctx context.Context, db Execer, appointmentID int, from, to models.VisitStatus) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		string(to), appointmentID, string(from))
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: expected %s", ErrInvalidTransition, from)
	}
	metrics.VisitTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

// AdvanceVisit reads the current status and moves to the target when the table allows it.
func AdvanceVisit(ctx context.Context, db Execer, appointmentID int, to models.VisitStatus) (models.VisitStatus, error) {
	if !to.Valid() {
		return "", ErrInvalidStatus
	}
	from, err := VisitStatus(ctx, db, appointmentID)
	if err != nil {
		return "", err
	}
	return from, TransitionVisit(ctx, db, appointmentID, from, to)
}
