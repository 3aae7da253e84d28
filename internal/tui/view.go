package tui

import (
	"fmt"
	"strings"

	"taskboard/internal/client"

	"github.com/charmbracelet/lipgloss"
)

type blockKind int

const (
	blockHeader blockKind = iota
	blockToolbar
	blockDraft
	blockTodo
	blockEmpty
	blockOverlay
	blockFooter
)

// block is one vertical section of the list screen. View renders the blocks
// top to bottom and mouse presses are resolved against the same list.
type block struct {
	kind    blockKind
	index   int
	content string
}

var toolbarButtons = []string{"reload", "header"}

func (m Model) View() string {
	if m.screen == screenLogin {
		return m.loginView()
	}

	blocks := m.blocks()

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.content)
	}

	return strings.Join(parts, "\n")
}

func (m Model) blocks() []block {
	var blocks []block

	if m.display.Visible() {
		blocks = append(blocks, block{kind: blockHeader, content: m.headerView() + "\n"})
	}

	blocks = append(blocks, block{kind: blockToolbar, content: toolbarView()})

	if m.creating {
		blocks = append(blocks, block{kind: blockDraft, content: "  + " + m.draft.View()})
	}

	if len(m.todos) == 0 {
		empty := "No todos yet. Press n to add one."
		if m.loading {
			empty = "Loading..."
		}

		blocks = append(blocks, block{kind: blockEmpty, content: helpStyle.Render(empty)})
	}

	for i, todo := range m.todos {
		blocks = append(blocks, block{kind: blockTodo, index: i, content: m.todoView(i, todo)})
	}

	if m.overlay != nil {
		blocks = append(blocks, block{kind: blockOverlay, content: m.overlayView()})
	}

	blocks = append(blocks, block{kind: blockFooter, content: "\n" + m.footerView()})

	return blocks
}

// blockAt returns the block rendered on line y and the line offset inside it.
func (m Model) blockAt(y int) (block, int, bool) {
	top := 0

	for _, b := range m.blocks() {
		height := lipgloss.Height(b.content)
		if y >= top && y < top+height {
			return b, y - top, true
		}

		top += height
	}

	return block{}, 0, false
}

func (m Model) headerView() string {
	done := 0
	for _, todo := range m.todos {
		if todo.Completed {
			done++
		}
	}

	return headerStyle.Render("Taskboard") + " " + helpStyle.Render(fmt.Sprintf("%d/%d done", done, len(m.todos)))
}

func toolbarView() string {
	buttons := make([]string, 0, len(toolbarButtons))
	for _, name := range toolbarButtons {
		buttons = append(buttons, "[ "+name+" ]")
	}

	return helpStyle.Render(strings.Join(buttons, "  "))
}

// toolbarButtonAt maps a column on the toolbar line to a button name.
func toolbarButtonAt(x int) (string, bool) {
	left := 0

	for _, name := range toolbarButtons {
		width := len(name) + 4
		if x >= left && x < left+width {
			return name, true
		}

		left += width + 2
	}

	return "", false
}

func (m Model) todoView(index int, todo client.Todo) string {
	checkbox := "[ ] "
	if todo.Completed {
		checkbox = checkStyle.Render("[x]") + " "
	}

	if m.coordinator.EditingID() == todo.ID {
		lines := []string{
			checkbox + m.title.View(),
			lipgloss.NewStyle().PaddingLeft(checkboxWidth).Render(m.description.View()),
			strings.Repeat(" ", checkboxWidth) + m.metaView(todo) + helpStyle.Render("enter save · esc cancel · tab field · ctrl+t tags · ctrl+b start · ctrl+e due"),
		}

		return strings.Join(lines, "\n")
	}

	title := todo.Title

	switch {
	case todo.Completed:
		title = completedStyle.Render(title)
	case index == m.cursor:
		title = selectedStyle.Render(title)
	}

	line := checkbox + title
	if meta := m.metaView(todo); meta != "" {
		line += "  " + meta
	}

	return line
}

// metaView renders the tag chips and dates of a todo, with a trailing space when not empty.
func (m Model) metaView(todo client.Todo) string {
	var parts []string

	for _, tag := range todo.Tags {
		parts = append(parts, tagStyle(tag.Color).Render(tag.Name))
	}

	if todo.StartAt != nil {
		parts = append(parts, dateStyle.Render("from "+todo.StartAt.In(m.clock().Location()).Format("Jan 02")))
	}

	if todo.DueAt != nil {
		style := dateStyle
		if !todo.Completed && todo.DueAt.Before(m.clock()) {
			style = overdueStyle
		}

		parts = append(parts, style.Render("due "+todo.DueAt.In(m.clock().Location()).Format("Jan 02")))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " ") + " "
}

func (m Model) overlayView() string {
	lines := []string{
		selectedStyle.Render(m.overlay.kind.title()),
		m.overlay.input.View(),
	}

	if m.overlay.kind != overlayTags {
		lines = append(lines, helpStyle.Render("enter set · ctrl+x clear · esc close"))

		return overlayStyle.Render(strings.Join(lines, "\n"))
	}

	todo, _ := m.find(m.overlay.todoID)

	options := m.tagOptions()
	for i, option := range options {
		marker := "  "
		if i == m.overlay.cursor {
			marker = "> "
		}

		switch {
		case option.create:
			lines = append(lines, marker+fmt.Sprintf("+ create %q", option.tag.Name))
		case todo.HasTag(option.tag.ID):
			lines = append(lines, marker+checkStyle.Render("✓ ")+tagStyle(option.tag.Color).Render(option.tag.Name))
		default:
			lines = append(lines, marker+"  "+tagStyle(option.tag.Color).Render(option.tag.Name))
		}
	}

	if len(options) == 0 {
		lines = append(lines, helpStyle.Render("type a name to create a tag"))
	}

	lines = append(lines, helpStyle.Render("enter toggle · esc close"))

	return overlayStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) footerView() string {
	if m.status != "" {
		if m.statusErr {
			return errorStyle.Render(m.status)
		}

		return statusStyle.Render(m.status)
	}

	if m.coordinator.Current() != nil {
		return helpStyle.Render("editing")
	}

	return helpStyle.Render("j/k move · enter edit · space done · n new · D delete · t tags · s start · d due · h header · q quit")
}

func (m Model) loginView() string {
	lines := []string{
		headerStyle.Render("Taskboard"),
		"",
		"Email     " + m.email.View(),
		"Password  " + m.password.View(),
		"",
		helpStyle.Render("tab switch field · enter log in · esc quit"),
	}

	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}

		lines = append(lines, "", style.Render(m.status))
	}

	return strings.Join(lines, "\n")
}
