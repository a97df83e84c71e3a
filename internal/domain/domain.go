package domain

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at" format:"date-time"`
	UpdatedAt    string `json:"updated_at" format:"date-time"`
}

// Project is the aggregate root. Tasks live inside the project document and
// are persisted with it in a single store write.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	Members     []string `json:"members"`
	Tasks       []Task   `json:"tasks"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
	UpdatedAt   string   `json:"updated_at" format:"date-time"`
}

type Task struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type" enum:"task,bug"`
	Status      string             `json:"status" enum:"Not Started,In Progress,Stuck,Done"`
	Priority    string             `json:"priority" enum:"none,low,medium,high,critical"`
	Timeline    Timeline           `json:"timeline"`
	AssignedTo  []string           `json:"assigned_to"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   string             `json:"created_at" format:"date-time"`
	UpdatedAt   string             `json:"updated_at" format:"date-time"`
	ActivityLog []ActivityLogEntry `json:"activity_log"`
}

type Timeline struct {
	Start *string `json:"start,omitempty" format:"date-time"`
	End   *string `json:"end,omitempty" format:"date-time"`
}

// ActivityLogEntry is immutable once appended; the log is ordered by insertion.
type ActivityLogEntry struct {
	Action      string `json:"action"`
	PerformedBy string `json:"performed_by"`
	Timestamp   string `json:"timestamp" format:"date-time"`
}

// AuditRecord is a durable project-level record, written before a task is
// removed so deletion history survives the task itself.
type AuditRecord struct {
	ID        int64  `json:"id"`
	TS        string `json:"ts" format:"date-time"`
	ProjectID string `json:"project_id"`
	TaskID    string `json:"task_id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
}

// APIKey is a personal access token for CLI and integration use. Only the
// SHA-256 digest of the key material is stored.
type APIKey struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"-"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusStuck      = "Stuck"
	StatusDone       = "Done"
)

const (
	PriorityNone     = "none"
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

const (
	TaskTypeTask = "task"
	TaskTypeBug  = "bug"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusStuck, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ValidTaskType(t string) bool {
	return t == TaskTypeTask || t == TaskTypeBug
}

// TaskByID returns a pointer into the project's task slice, or nil.
func (p *Project) TaskByID(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// RemoveTask splices the task out of the sequence, preserving order.
// Returns false when the id is not present.
func (p *Project) RemoveTask(id string) bool {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// HasMember reports whether the user id is the creator or a listed member.
func (p *Project) HasMember(userID string) bool {
	if p.CreatedBy == userID {
		return true
	}
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}
