package tui

import (
	"context"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/editor"

	tea "github.com/charmbracelet/bubbletea"
)

type loadedMsg struct {
	todos []client.Todo
	tags  []client.Tag
	err   error
}

type loggedInMsg struct {
	tokens client.Tokens
	err    error
}

type refreshedMsg struct {
	tokens client.Tokens
	err    error
}

// mutationDoneMsg reports a finished write. The list is reloaded afterwards.
type mutationDoneMsg struct {
	action string
	status string
	err    error
}

// closeSurfaceMsg retries a close that the editor dropped as part of a dismiss cascade.
type closeSurfaceMsg struct {
	todoID  string
	surface editor.Surface
}

func (m Model) loadCmd() tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todos, err := api.ListTodos(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}

		tags, err := api.ListTags(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}

		return loadedMsg{todos: todos, tags: tags}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		tokens, err := api.Login(ctx, email, password)

		return loggedInMsg{tokens: tokens, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		tokens, err := api.Refresh(ctx)

		return refreshedMsg{tokens: tokens, err: err}
	}
}

func (m Model) createCmd(title string) tea.Cmd {
	return m.mutate("create todo", "Todo created", func(ctx context.Context, api API) error {
		_, err := api.CreateTodo(ctx, title, nil)

		return err
	})
}

func (m Model) decisionCmd(decision editor.Decision, action, status string) tea.Cmd {
	return m.mutate(action, status, func(ctx context.Context, api API) error {
		return decision.Apply(ctx, api)
	})
}

// mutate runs fn against the API off the UI goroutine.
func (m Model) mutate(action, status string, fn func(ctx context.Context, api API) error) tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return mutationDoneMsg{action: action, status: status, err: fn(ctx, api)}
	}
}

func closeSurfaceLater(todoID string, surface editor.Surface) tea.Cmd {
	return tea.Tick(editor.DismissWindow, func(time.Time) tea.Msg {
		return closeSurfaceMsg{todoID: todoID, surface: surface}
	})
}
