package editor

import (
	"context"
	"fmt"
)

type Action int

const (
	ActionNone Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Mutator persists the outcome of a save.
type Mutator interface {
	UpdateTodoText(ctx context.Context, id, title string, description *string) error
	DeleteTodo(ctx context.Context, id string) error
}

// Decision is the server side effect of leaving edit mode by saving.
// A nil Description on an update clears it.
type Decision struct {
	TodoID      string
	Action      Action
	Title       string
	Description *string
}

func (d Decision) Apply(ctx context.Context, mutator Mutator) error {
	switch d.Action {
	case ActionUpdate:
		if err := mutator.UpdateTodoText(ctx, d.TodoID, d.Title, d.Description); err != nil {
			return fmt.Errorf("failed to update todo %s: %w", d.TodoID, err)
		}
	case ActionDelete:
		if err := mutator.DeleteTodo(ctx, d.TodoID); err != nil {
			return fmt.Errorf("failed to delete todo %s: %w", d.TodoID, err)
		}
	case ActionNone:
	}

	return nil
}
