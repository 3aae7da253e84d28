// Package editor holds the inline edit state of a todo: entering and leaving
// edit mode, telling a real outside interaction apart from the gesture that
// dismissed one of the overlays, and deciding what a save means for the server.
package editor

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DismissWindow is how long after an overlay closes that outside interactions
// and close requests from other overlays are attributed to the same gesture.
const DismissWindow = 300 * time.Millisecond

type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}

	return "viewing"
}

// Surface is a transient overlay that can be open on top of the editor.
type Surface int

const (
	TagMenu Surface = iota
	StartPicker
	DuePicker

	surfaceCount
)

func (s Surface) String() string {
	switch s {
	case TagMenu:
		return "tag menu"
	case StartPicker:
		return "start picker"
	case DuePicker:
		return "due picker"
	default:
		return "unknown"
	}
}

type Key int

const (
	KeyEnter Key = iota
	// KeyModEnter is Enter with Ctrl or Cmd held.
	KeyModEnter
	KeyEscape
)

// Target describes where a press or focus change landed.
type Target struct {
	Inside        bool
	OnCheckbox    bool
	IgnoreOutside bool
}

type Clock func() time.Time

type Option func(*Editor)

func WithClock(clock Clock) Option {
	return func(e *Editor) {
		e.now = clock
	}
}

// Todo is the server copy the editor compares drafts against.
type Todo struct {
	ID          string
	Title       string
	Description *string
}

type surfaceState struct {
	open     bool
	closedAt time.Time
}

type Editor struct {
	todo        Todo
	mode        Mode
	title       string
	description string
	surfaces    [surfaceCount]surfaceState
	now         Clock
}

func New(todo Todo, opts ...Option) *Editor {
	e := &Editor{now: time.Now}

	for _, opt := range opts {
		opt(e)
	}

	e.Reset(todo)

	return e
}

// Reset replaces the server copy and discards drafts. It is a no-op while editing.
func (e *Editor) Reset(todo Todo) {
	if e.mode == Editing {
		return
	}

	e.todo = todo
	e.resetDrafts()
}

func (e *Editor) ID() string {
	return e.todo.ID
}

func (e *Editor) Mode() Mode {
	return e.mode
}

func (e *Editor) Editing() bool {
	return e.mode == Editing
}

func (e *Editor) Title() string {
	return e.title
}

func (e *Editor) Description() string {
	return e.description
}

func (e *Editor) SetTitle(title string) {
	if e.mode == Editing {
		e.title = title
	}
}

func (e *Editor) SetDescription(description string) {
	if e.mode == Editing {
		e.description = description
	}
}

// Begin enters edit mode for a press on the item. Presses on the checkbox
// toggle completion instead and leave the mode unchanged.
func (e *Editor) Begin(target Target) bool {
	if target.OnCheckbox {
		return false
	}

	if e.mode == Editing {
		return true
	}

	e.mode = Editing
	e.resetDrafts()

	return true
}

// HandleKey applies a key press. It reports whether the editor left edit mode,
// and the decision to apply when it left by saving.
func (e *Editor) HandleKey(key Key, multiline bool) (Decision, bool) {
	if e.mode != Editing {
		return Decision{}, false
	}

	switch key {
	case KeyModEnter:
		return e.Save(), true
	case KeyEnter:
		if multiline {
			return Decision{}, false
		}

		return e.Save(), true
	case KeyEscape:
		e.Cancel()

		return Decision{}, true
	}

	return Decision{}, false
}

// HandleOutside applies a press or focus change outside the item and saves
// unless the interaction belongs to an overlay.
func (e *Editor) HandleOutside(target Target) (Decision, bool) {
	if e.mode != Editing || target.Inside {
		return Decision{}, false
	}

	if surface, ok := e.anyOpen(); ok {
		log.Debug().Str("todo", e.todo.ID).Stringer("surface", surface).Msg("outside interaction ignored, overlay open")

		return Decision{}, false
	}

	if surface, ok := e.recentlyClosed(-1); ok {
		log.Debug().Str("todo", e.todo.ID).Stringer("surface", surface).Msg("outside interaction ignored, overlay just closed")

		return Decision{}, false
	}

	if target.IgnoreOutside {
		return Decision{}, false
	}

	return e.Save(), true
}

// SetSurfaceOpen records an overlay opening or closing. A close request that
// arrives right after another overlay closed is part of the same dismiss
// cascade and is dropped; it reports false in that case.
func (e *Editor) SetSurfaceOpen(surface Surface, open bool) bool {
	if surface < 0 || surface >= surfaceCount {
		return false
	}

	if open {
		e.surfaces[surface].open = true

		return true
	}

	if other, ok := e.recentlyClosed(surface); ok {
		log.Debug().Stringer("surface", surface).Stringer("closed", other).Msg("phantom close ignored")

		return false
	}

	e.surfaces[surface] = surfaceState{open: false, closedAt: e.now()}

	return true
}

func (e *Editor) SurfaceOpen(surface Surface) bool {
	if surface < 0 || surface >= surfaceCount {
		return false
	}

	return e.surfaces[surface].open
}

// Save leaves edit mode and returns what has to happen on the server.
func (e *Editor) Save() Decision {
	decision := e.decide()

	e.mode = Viewing

	return decision
}

// Cancel leaves edit mode and discards the drafts.
func (e *Editor) Cancel() {
	e.mode = Viewing
	e.resetDrafts()
}

func (e *Editor) decide() Decision {
	title := strings.TrimSpace(e.title)
	description := strings.TrimSpace(e.description)

	if title == "" {
		return Decision{TodoID: e.todo.ID, Action: ActionDelete}
	}

	if title == e.todo.Title && description == deref(e.todo.Description) {
		return Decision{TodoID: e.todo.ID, Action: ActionNone}
	}

	decision := Decision{TodoID: e.todo.ID, Action: ActionUpdate, Title: title}
	if description != "" {
		decision.Description = &description
	}

	return decision
}

func (e *Editor) anyOpen() (Surface, bool) {
	for surface := range surfaceCount {
		if e.surfaces[surface].open {
			return surface, true
		}
	}

	return 0, false
}

// recentlyClosed finds a surface other than except that closed within the dismiss window.
func (e *Editor) recentlyClosed(except Surface) (Surface, bool) {
	now := e.now()

	for surface := range surfaceCount {
		if surface == except {
			continue
		}

		closedAt := e.surfaces[surface].closedAt
		if !closedAt.IsZero() && now.Sub(closedAt) < DismissWindow {
			return surface, true
		}
	}

	return 0, false
}

func (e *Editor) resetDrafts() {
	e.title = e.todo.Title
	e.description = deref(e.todo.Description)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
