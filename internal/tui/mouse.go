package tui

import (
	"taskboard/internal/editor"

	tea "github.com/charmbracelet/bubbletea"
)

// handleMouse routes a left press. A press outside an open overlay only
// dismisses it; the editor sees the same press as an outside interaction and
// ignores it because the overlay has just closed.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	b, offset, hit := m.blockAt(msg.Y)

	// saving the edited todo may delete it and shift the indexes
	pressedID := ""
	if hit && b.kind == blockTodo {
		pressedID = m.todos[b.index].ID
	}

	var cmds []tea.Cmd

	dismissed := false

	if m.overlay != nil {
		if hit && b.kind == blockOverlay {
			return m.clickOverlay(offset)
		}

		cmds = append(cmds, m.closeOverlay())
		dismissed = true
	}

	target := m.targetOf(b, offset, hit, msg.X)

	if m.coordinator.Current() != nil {
		decision, exited := m.coordinator.HandleOutside(target)
		if exited {
			cmds = append(cmds, m.finishEdit(decision, exited))
		} else if !target.Inside && !target.IgnoreOutside {
			return tea.Batch(cmds...)
		}
	} else if dismissed {
		return tea.Batch(cmds...)
	}

	if hit {
		cmds = append(cmds, m.press(b, pressedID, offset, msg.X))
	}

	return tea.Batch(cmds...)
}

// targetOf describes a press relative to the todo in edit mode.
func (m *Model) targetOf(b block, offset int, hit bool, x int) editor.Target {
	if !hit {
		return editor.Target{}
	}

	switch b.kind {
	case blockTodo:
		return editor.Target{
			Inside:     m.todos[b.index].ID == m.coordinator.EditingID(),
			OnCheckbox: offset == 0 && x < checkboxWidth,
		}
	case blockToolbar:
		return editor.Target{IgnoreOutside: true}
	}

	return editor.Target{}
}

func (m *Model) press(b block, todoID string, offset, x int) tea.Cmd {
	switch b.kind {
	case blockToolbar:
		button, ok := toolbarButtonAt(x)
		if !ok {
			return nil
		}

		switch button {
		case "reload":
			m.loading = true

			return m.loadCmd()
		case "header":
			m.display.Toggle()
		}
	case blockTodo:
		if offset == 0 && x < checkboxWidth {
			return m.toggleCompleted(todoID)
		}

		if m.coordinator.EditingID() == todoID {
			m.focusField(offset > 0 && offset <= descriptionHeight)

			return nil
		}

		return m.beginEdit(todoID, editor.Target{Inside: true})
	}

	return nil
}
