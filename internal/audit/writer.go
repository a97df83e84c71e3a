// Package audit keeps a durable append-only record of destructive task
// operations. Rows survive the task they describe: a delete is written
// here before the task leaves its project document.
package audit

import (
	"context"
	"database/sql"
	"time"

	"taskboard/internal/domain"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

func New(db *sql.DB) Writer {
	return Writer{DB: db, Now: time.Now}
}

func (w Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Append records one action against a project. taskID may be empty for
// project-level actions.
func (w Writer) Append(ctx context.Context, projectID, taskID, actorID, action string) error {
	ts := w.now().UTC().Format(time.RFC3339)
	var tid any
	if taskID != "" {
		tid = taskID
	}
	_, err := w.DB.ExecContext(ctx,
		`INSERT INTO audit_log(ts, project_id, task_id, actor_id, action) VALUES (?,?,?,?,?)`,
		ts, projectID, tid, actorID, action)
	return err
}

// List returns the most recent records for a project, newest first.
func (w Writer) List(ctx context.Context, projectID string, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := w.DB.QueryContext(ctx,
		`SELECT id, ts, project_id, task_id, actor_id, action FROM audit_log WHERE project_id=? ORDER BY id DESC LIMIT ?`,
		projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.AuditRecord
	for rows.Next() {
		var r domain.AuditRecord
		var tid sql.NullString
		if err := rows.Scan(&r.ID, &r.TS, &r.ProjectID, &tid, &r.ActorID, &r.Action); err != nil {
			return nil, err
		}
		r.TaskID = tid.String
		res = append(res, r)
	}
	return res, rows.Err()
}
