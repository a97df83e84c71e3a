package engine

import "fmt"

// ValidationError indicates a rejected input value. The task and its log are
// left untouched when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PermissionDeniedError indicates the acting user may not perform the
// operation on the target task.
type PermissionDeniedError struct {
	UserID string
	Action string
}

func (e PermissionDeniedError) Error() string {
	return fmt.Sprintf("user %s may not %s", e.UserID, e.Action)
}
