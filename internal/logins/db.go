package logins

import (
	"context"
	"database/sql"

	"github.com/subivo/gatehouse"
	"github.com/subivo/gatehouse/internal/session"
)

// Recorder writes one row to postgres per successful identity resolution,
// i.e. each time a session's user record is (re)established via login,
// refresh, or bootstrap.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RecordLogin(ctx context.Context, email string, role gatehouse.Role) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth.login (email, role, logged_in_at)
		VALUES ($1, $2, now())
	`, email, string(role))
	return err
}

var _ session.Auditor = (*Recorder)(nil)
