package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/editor"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// overlayHeaderLines is the number of lines above the first tag option inside
// the overlay border: the title and the filter input.
const overlayHeaderLines = 2

// tagPalette colors tags created from the tag menu.
var tagPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

type overlayKind int

const (
	overlayTags overlayKind = iota
	overlayStart
	overlayDue
)

func (k overlayKind) surface() editor.Surface {
	switch k {
	case overlayStart:
		return editor.StartPicker
	case overlayDue:
		return editor.DuePicker
	default:
		return editor.TagMenu
	}
}

func (k overlayKind) title() string {
	switch k {
	case overlayStart:
		return "Start date"
	case overlayDue:
		return "Due date"
	default:
		return "Tags"
	}
}

type overlay struct {
	kind   overlayKind
	todoID string
	cursor int
	input  textinput.Model
}

type tagOption struct {
	tag    client.Tag
	create bool
}

func (m *Model) openOverlay(kind overlayKind, todoID string) tea.Cmd {
	todo, ok := m.find(todoID)
	if !ok {
		return nil
	}

	m.editorFor(todo).SetSurfaceOpen(kind.surface(), true)

	input := newInput("filter or new tag", 64)

	switch kind {
	case overlayStart:
		input = newInput(dateLayout, len(dateLayout))
		input.SetValue(formatDate(todo.StartAt))
	case overlayDue:
		input = newInput(dateLayout, len(dateLayout))
		input.SetValue(formatDate(todo.DueAt))
	}

	input.Focus()

	m.overlay = &overlay{kind: kind, todoID: todoID, input: input}

	return nil
}

// closeOverlay hides the overlay and reports the close to the editor. A close
// the editor drops while the surface is still open is retried once the
// dismiss window has passed.
func (m *Model) closeOverlay() tea.Cmd {
	if m.overlay == nil {
		return nil
	}

	todoID, surface := m.overlay.todoID, m.overlay.kind.surface()
	m.overlay = nil

	e, ok := m.editors[todoID]
	if !ok {
		return nil
	}

	if !e.SetSurfaceOpen(surface, false) && e.SurfaceOpen(surface) {
		return closeSurfaceLater(todoID, surface)
	}

	return nil
}

func (m *Model) handleCloseSurface(msg closeSurfaceMsg) {
	if m.overlay != nil && m.overlay.todoID == msg.todoID && m.overlay.kind.surface() == msg.surface {
		return
	}

	if e, ok := m.editors[msg.todoID]; ok && e.SurfaceOpen(msg.surface) {
		e.SetSurfaceOpen(msg.surface, false)
	}
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		return m.closeOverlay()
	}

	if m.overlay.kind == overlayTags {
		return m.handleTagMenuKey(msg)
	}

	return m.handlePickerKey(msg)
}

func (m *Model) handleTagMenuKey(msg tea.KeyMsg) tea.Cmd {
	options := m.tagOptions()

	switch msg.String() {
	case "up", "ctrl+p":
		if m.overlay.cursor > 0 {
			m.overlay.cursor--
		}

		return nil
	case "down", "ctrl+n":
		if m.overlay.cursor < len(options)-1 {
			m.overlay.cursor++
		}

		return nil
	case "enter":
		if m.overlay.cursor >= len(options) {
			return nil
		}

		return m.chooseTag(options[m.overlay.cursor])
	}

	var cmd tea.Cmd
	m.overlay.input, cmd = m.overlay.input.Update(msg)
	m.overlay.cursor = 0

	return cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Clear):
		return m.setDate(nil)
	case msg.String() == "enter":
		value := strings.TrimSpace(m.overlay.input.Value())
		if value == "" {
			return m.setDate(nil)
		}

		date, err := time.ParseInLocation(dateLayout, value, time.Local)
		if err != nil {
			m.status = fmt.Sprintf("dates look like %s", dateLayout)
			m.statusErr = true

			return nil
		}

		return m.setDate(&date)
	}

	var cmd tea.Cmd
	m.overlay.input, cmd = m.overlay.input.Update(msg)

	return cmd
}

// tagOptions lists the tags matching the filter, followed by a create entry
// when no tag has exactly that name.
func (m *Model) tagOptions() []tagOption {
	filter := strings.TrimSpace(m.overlay.input.Value())
	lower := strings.ToLower(filter)

	options := make([]tagOption, 0, len(m.tags)+1)
	exact := false

	for _, tag := range m.tags {
		if strings.EqualFold(tag.Name, filter) {
			exact = true
		}

		if lower == "" || strings.Contains(strings.ToLower(tag.Name), lower) {
			options = append(options, tagOption{tag: tag})
		}
	}

	if filter != "" && !exact {
		options = append(options, tagOption{tag: client.Tag{Name: filter}, create: true})
	}

	return options
}

// chooseTag toggles the option on the overlay's todo. The menu stays open.
func (m *Model) chooseTag(option tagOption) tea.Cmd {
	todoID := m.overlay.todoID

	index, ok := m.indexOf(todoID)
	if !ok {
		return nil
	}

	if option.create {
		name := option.tag.Name
		color := tagPalette[len(m.tags)%len(tagPalette)]

		m.overlay.input.SetValue("")
		m.overlay.cursor = 0

		return m.mutate("create tag", "Tag "+name+" attached", func(ctx context.Context, api API) error {
			_, err := api.AttachTagByName(ctx, todoID, name, &color)

			return err
		})
	}

	tag := option.tag
	todo := &m.todos[index]

	if todo.HasTag(tag.ID) {
		remaining := make([]client.Tag, 0, len(todo.Tags))
		for _, attached := range todo.Tags {
			if attached.ID != tag.ID {
				remaining = append(remaining, attached)
			}
		}

		todo.Tags = remaining

		return m.mutate("detach tag", "Tag "+tag.Name+" detached", func(ctx context.Context, api API) error {
			return api.DetachTag(ctx, todoID, tag.ID)
		})
	}

	todo.Tags = append(append([]client.Tag(nil), todo.Tags...), tag)

	return m.mutate("attach tag", "Tag "+tag.Name+" attached", func(ctx context.Context, api API) error {
		result, err := api.AttachTag(ctx, todoID, tag.ID)
		if err == nil && !result.Attached {
			log.Debug().Str("todo", todoID).Str("tag", tag.ID).Msg("tag was already attached")
		}

		return err
	})
}

func (m *Model) setDate(date *time.Time) tea.Cmd {
	kind, todoID := m.overlay.kind, m.overlay.todoID
	closeCmd := m.closeOverlay()

	index, ok := m.indexOf(todoID)
	if !ok {
		return closeCmd
	}

	if kind == overlayStart {
		m.todos[index].StartAt = date

		return tea.Batch(closeCmd, m.mutate("set start date", "Start date saved", func(ctx context.Context, api API) error {
			return api.SetStartAt(ctx, todoID, date)
		}))
	}

	m.todos[index].DueAt = date

	return tea.Batch(closeCmd, m.mutate("set due date", "Due date saved", func(ctx context.Context, api API) error {
		return api.SetDueAt(ctx, todoID, date)
	}))
}

// clickOverlay handles a press on the given line of the rendered overlay.
func (m *Model) clickOverlay(line int) tea.Cmd {
	if m.overlay.kind != overlayTags {
		return nil
	}

	// one line for the top border
	option := line - 1 - overlayHeaderLines

	options := m.tagOptions()
	if option < 0 || option >= len(options) {
		return nil
	}

	m.overlay.cursor = option

	return m.chooseTag(options[option])
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}

	return date.In(time.Local).Format(dateLayout)
}
