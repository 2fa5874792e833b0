package domain

import "time"

// Task is a single to-do item owned by exactly one user.
type Task struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Optional carries a value together with whether it was supplied at all.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some wraps v as a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Or returns the wrapped value when set, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// TaskPatch describes a partial update. Title and Text are aliases for the
// same field; Title wins when both hold a non-blank value.
type TaskPatch struct {
	Title       Optional[string]
	Text        Optional[string]
	Description Optional[string]
	Completed   Optional[bool]
}

// ResolveTitle picks the new title out of the Title/Text aliases.
func (p TaskPatch) ResolveTitle() (string, error) {
	if p.Title.Set && !IsBlank(p.Title.Value) {
		return p.Title.Value, nil
	}
	if p.Text.Set && !IsBlank(p.Text.Value) {
		return p.Text.Value, nil
	}
	return "", Invalid("task title is required")
}

// MergeTask applies patch on top of current. Fields the patch does not carry
// keep their current value. The result keeps current's identity and owner.
func MergeTask(current Task, patch TaskPatch) (Task, error) {
	title, err := patch.ResolveTitle()
	if err != nil {
		return Task{}, err
	}

	next := current
	next.Title = title
	next.Description = patch.Description.Or(current.Description)
	next.Completed = patch.Completed.Or(current.Completed)
	return next, nil
}
