package repository

import (
	"context"
	"fmt"
	"strings"
)

// LogActivity appends an entry to the audit trail shown to managers.
func LogActivity(ctx context.Context, db Execer, userID int, action, details string) error {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO activity_logs (user_id, action, details) VALUES (?, ?, ?)`,
		userID, action, details); err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// ActionColor maps an action name to the badge color of the activity feed.
func ActionColor(action string) string {
	a := strings.ToLower(action)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(a, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("deactivate", "delete", "remove", "error"):
		return "danger"
	case has("activate", "verified", "success", "login"):
		return "success"
	case has("role", "change"):
		return "warning"
	}
	return "info"
}
