package tui_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/credential"
	"taskboard/internal/editor"
	"taskboard/internal/tui"
	"taskboard/shared/failure"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeAPI struct {
	mu sync.Mutex

	todos        []client.Todo
	tags         []client.Tag
	calls        []string
	unauthorized int
	refreshErr   error
	loginErr     error
}

func (f *fakeAPI) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (client.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("login:%s", email)

	if f.loginErr != nil {
		return client.Tokens{}, f.loginErr
	}

	return client.Tokens{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeAPI) Refresh(context.Context) (client.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("refresh")

	if f.refreshErr != nil {
		return client.Tokens{}, f.refreshErr
	}

	return client.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeAPI) ListTodos(context.Context) ([]client.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unauthorized > 0 {
		f.unauthorized--

		return nil, failure.Unauthorized("token expired")
	}

	return append([]client.Todo(nil), f.todos...), nil
}

func (f *fakeAPI) ListTags(context.Context) ([]client.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]client.Tag(nil), f.tags...), nil
}

func (f *fakeAPI) CreateTodo(_ context.Context, title string, _ *string) (client.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("create:%s", title)

	todo := client.Todo{ID: fmt.Sprintf("todo-%d", len(f.todos)+1), Title: title}
	f.todos = append(f.todos, todo)

	return todo, nil
}

func (f *fakeAPI) UpdateTodoText(_ context.Context, id, title string, description *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	desc := ""
	if description != nil {
		desc = *description
	}

	f.record("update:%s:%s:%s", id, title, desc)

	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos[i].Title = title
			f.todos[i].Description = description
		}
	}

	return nil
}

func (f *fakeAPI) DeleteTodo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("delete:%s", id)

	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)

			break
		}
	}

	return nil
}

func (f *fakeAPI) SetCompleted(_ context.Context, id string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("complete:%s:%t", id, completed)

	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos[i].Completed = completed
		}
	}

	return nil
}

func (f *fakeAPI) SetStartAt(_ context.Context, id string, startAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("start:%s:%s", id, formatDate(startAt))

	return nil
}

func (f *fakeAPI) SetDueAt(_ context.Context, id string, dueAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("due:%s:%s", id, formatDate(dueAt))

	return nil
}

func (f *fakeAPI) AttachTag(_ context.Context, todoID, tagID string) (client.AttachResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("attach:%s:%s", todoID, tagID)

	return client.AttachResult{TodoID: todoID, Tag: client.Tag{ID: tagID}, Attached: true}, nil
}

func (f *fakeAPI) AttachTagByName(_ context.Context, todoID, name string, color *string) (client.AttachResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("attach-name:%s:%s", todoID, name)

	return client.AttachResult{TodoID: todoID, Tag: client.Tag{ID: "tag-new", Name: name, Color: color}, Attached: true}, nil
}

func (f *fakeAPI) DetachTag(_ context.Context, todoID, tagID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("detach:%s:%s", todoID, tagID)

	return nil
}

func formatDate(date *time.Time) string {
	if date == nil {
		return "none"
	}

	return date.Format("2006-01-02")
}

type fakeTokens struct {
	saved   []credential.Tokens
	cleared int
}

func (f *fakeTokens) Save(tokens credential.Tokens) error {
	f.saved = append(f.saved, tokens)

	return nil
}

func (f *fakeTokens) Clear() error {
	f.cleared++

	return nil
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyAltEnter = tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlT    = tea.KeyMsg{Type: tea.KeyCtrlT}
	keyCtrlU    = tea.KeyMsg{Type: tea.KeyCtrlU}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
)

func typeText(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// typeKeys delivers text one rune per message, the way a terminal does. A
// single message with several runes would be read as a named key like "home".
func typeKeys(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return msgs
}

// strokes flattens single messages and typed text into one sequence.
func strokes(parts ...any) []tea.Msg {
	var msgs []tea.Msg

	for _, part := range parts {
		if typed, ok := part.([]tea.Msg); ok {
			msgs = append(msgs, typed...)

			continue
		}

		msgs = append(msgs, part)
	}

	return msgs
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// drain runs cmd and every command produced while handling its messages.
func drain(t *testing.T, m tui.Model, cmd tea.Cmd) tui.Model {
	t.Helper()

	queue := []tea.Cmd{cmd}

	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")

		next := queue[0]
		queue = queue[1:]

		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			return m
		default:
			updated, c := m.Update(msg)
			m = updated.(tui.Model)
			queue = append(queue, c)
		}
	}

	return m
}

func send(t *testing.T, m tui.Model, msgs ...tea.Msg) tui.Model {
	t.Helper()

	for _, msg := range msgs {
		updated, cmd := m.Update(msg)
		m = drain(t, updated.(tui.Model), cmd)
	}

	return m
}

func stringPtr(value string) *string {
	return &value
}

func newAPI() *fakeAPI {
	return &fakeAPI{
		todos: []client.Todo{
			{ID: "todo-1", Title: "Buy milk"},
			{ID: "todo-2", Title: "Call mom", Description: stringPtr("about sunday")},
		},
		tags: []client.Tag{
			{ID: "tag-1", Name: "work", Color: stringPtr("#3B82F6")},
			{ID: "tag-2", Name: "home"},
		},
	}
}

func newModel(t *testing.T, api *fakeAPI) (tui.Model, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}

	m := tui.New(api, &fakeTokens{}, &tui.Config{}, true, tui.WithClock(clock.Now))
	m = drain(t, m, m.Init())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	require.Len(t, m.Todos(), 2)

	return m, clock
}

func TestModel_Load(t *testing.T) {
	m, _ := newModel(t, newAPI())

	view := m.View()
	assert.Contains(t, view, "Taskboard")
	assert.Contains(t, view, "Buy milk")
	assert.Contains(t, view, "Call mom")
	assert.Empty(t, m.EditingID())
}

func TestModel_EditSave(t *testing.T) {
	tests := []struct {
		name  string
		keys  []tea.Msg
		calls []string
	}{
		{
			name:  "enter saves a changed title",
			keys:  strokes(keyEnter, typeKeys(" today"), keyEnter),
			calls: []string{"update:todo-1:Buy milk today:"},
		},
		{
			name:  "ctrl+s saves",
			keys:  []tea.Msg{keyEnter, typeText("!"), keyCtrlS},
			calls: []string{"update:todo-1:Buy milk!:"},
		},
		{
			name:  "alt+enter saves",
			keys:  []tea.Msg{keyEnter, typeText("!"), keyAltEnter},
			calls: []string{"update:todo-1:Buy milk!:"},
		},
		{
			name:  "unchanged text sends nothing",
			keys:  []tea.Msg{keyEnter, keyEnter},
			calls: nil,
		},
		{
			name:  "empty title deletes the todo",
			keys:  []tea.Msg{keyEnter, keyCtrlU, keyEnter},
			calls: []string{"delete:todo-1"},
		},
		{
			name:  "escape discards the drafts",
			keys:  strokes(keyEnter, typeKeys(" today"), keyEsc),
			calls: nil,
		},
		{
			name:  "enter in the description adds a line",
			keys:  strokes(keyEnter, keyTab, typeKeys("2 liters"), keyEnter, typeKeys("oat"), keyCtrlS),
			calls: []string{"update:todo-1:Buy milk:2 liters\noat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI()
			m, _ := newModel(t, api)

			m = send(t, m, tt.keys...)

			assert.Empty(t, m.EditingID())
			assert.Equal(t, tt.calls, api.Calls())
		})
	}
}

func TestModel_EditEscapeKeepsTitle(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, strokes(keyEnter, keyCtrlU, typeKeys("Something else"), keyEsc)...)

	assert.Equal(t, "Buy milk", m.Todos()[0].Title)

	m = send(t, m, keyEnter)
	assert.Equal(t, "todo-1", m.EditingID())
	assert.Contains(t, m.View(), "Buy milk")
}

func TestModel_ToggleCompleted(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, keyDown, keySpace)

	assert.Equal(t, []string{"complete:todo-2:true"}, api.Calls())
	assert.True(t, m.Todos()[1].Completed)
}

func TestModel_CreateTodo(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, strokes(typeText("n"), typeKeys("Walk the dog"), keyEnter)...)

	assert.Equal(t, []string{"create:Walk the dog"}, api.Calls())
	assert.Len(t, m.Todos(), 3)
}

func TestModel_DeleteTodo(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, typeText("D"))

	assert.Equal(t, []string{"delete:todo-1"}, api.Calls())
	require.Len(t, m.Todos(), 1)
	assert.Equal(t, "todo-2", m.Todos()[0].ID)
}

func TestModel_TagMenu(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, typeText("t"))
	assert.Contains(t, m.View(), "Tags")

	m = send(t, m, keyEnter)
	assert.Equal(t, []string{"attach:todo-1:tag-1"}, api.Calls())

	m = send(t, m, strokes(typeKeys("errands"), keyEnter)...)
	assert.Equal(t, []string{"attach:todo-1:tag-1", "attach-name:todo-1:errands"}, api.Calls())

	m = send(t, m, keyEsc)
	assert.NotContains(t, m.View(), "enter toggle")
}

func TestModel_TagMenuDetach(t *testing.T) {
	api := newAPI()
	api.todos[0].Tags = []client.Tag{api.tags[1]}

	m, _ := newModel(t, api)

	m = send(t, m, strokes(typeText("t"), typeKeys("home"), keyEnter)...)

	assert.Equal(t, []string{"detach:todo-1:tag-2"}, api.Calls())
}

func TestModel_DatePicker(t *testing.T) {
	api := newAPI()
	m, clock := newModel(t, api)

	m = send(t, m, strokes(typeText("d"), typeKeys("not a date"), keyEnter)...)

	status, isErr := m.Status()
	assert.True(t, isErr)
	assert.Contains(t, status, "2006-01-02")
	assert.Empty(t, api.Calls())

	m = send(t, m, strokes(keyCtrlU, typeKeys("2026-02-01"), keyEnter)...)
	assert.Equal(t, []string{"due:todo-1:2026-02-01"}, api.Calls())

	clock.Advance(editor.DismissWindow)

	m = send(t, m, typeText("s"), keyEnter)
	assert.Equal(t, []string{"due:todo-1:2026-02-01", "start:todo-1:none"}, api.Calls())
}

func TestModel_OutsideClickSaves(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, keyEnter, typeText("!"))
	require.Equal(t, "todo-1", m.EditingID())

	m = send(t, m, click(0, 200))

	assert.Empty(t, m.EditingID())
	assert.Equal(t, []string{"update:todo-1:Buy milk!:"}, api.Calls())
}

func TestModel_ClickOverlayDismissKeepsEditing(t *testing.T) {
	api := newAPI()
	m, clock := newModel(t, api)

	m = send(t, m, keyEnter, typeText("!"), keyCtrlT)
	require.Contains(t, m.View(), "enter toggle")

	m = send(t, m, click(0, 200))

	assert.NotContains(t, m.View(), "enter toggle")
	assert.Equal(t, "todo-1", m.EditingID())
	assert.Empty(t, api.Calls())

	clock.Advance(editor.DismissWindow)

	m = send(t, m, click(0, 200))

	assert.Empty(t, m.EditingID())
	assert.Equal(t, []string{"update:todo-1:Buy milk!:"}, api.Calls())
}

func TestModel_EscapeClosesOverlayFirst(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, keyEnter, keyCtrlT, keyEsc)

	assert.Equal(t, "todo-1", m.EditingID())
	assert.NotContains(t, m.View(), "enter toggle")

	m = send(t, m, keyEsc)
	assert.Empty(t, m.EditingID())
}

func TestModel_Mouse(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	// without the header the toolbar is line 0 and the todos follow
	m = send(t, m, typeText("h"))
	require.False(t, m.Display().Visible())

	m = send(t, m, click(1, 1))
	assert.Equal(t, []string{"complete:todo-1:true"}, api.Calls())
	assert.Empty(t, m.EditingID())

	m = send(t, m, click(10, 2))
	assert.Equal(t, "todo-2", m.EditingID())

	m = send(t, m, typeText("!"))

	// todo-1 is above the editing block
	m = send(t, m, click(10, 1))
	assert.Equal(t, "todo-1", m.EditingID())
	assert.Equal(t, []string{"complete:todo-1:true", "update:todo-2:Call mom!:about sunday"}, api.Calls())
}

func TestModel_ToolbarDoesNotEndEdit(t *testing.T) {
	api := newAPI()
	m, _ := newModel(t, api)

	m = send(t, m, keyEnter, typeText("!"))

	// toolbar is line 2 under the header; "[ header ]" starts at column 12
	m = send(t, m, click(13, 2))

	assert.False(t, m.Display().Visible())
	assert.Equal(t, "todo-1", m.EditingID())
	assert.Empty(t, api.Calls())
}

func TestModel_HeaderToggle(t *testing.T) {
	m, _ := newModel(t, newAPI())

	m = send(t, m, typeText("h"))
	assert.False(t, m.Display().Visible())
	assert.NotContains(t, m.View(), "0/2 done")

	m = send(t, m, typeText("h"))
	assert.True(t, m.Display().Visible())
	assert.Contains(t, m.View(), "0/2 done")
}

func TestModel_Login(t *testing.T) {
	api := newAPI()
	tokens := &fakeTokens{}

	m := tui.New(api, tokens, &tui.Config{Email: "jane@example.com"}, false)
	assert.Contains(t, m.View(), "Password")

	m = send(t, m, strokes(typeKeys("secret"), keyEnter)...)

	assert.Equal(t, []string{"login:jane@example.com"}, api.Calls())
	require.Len(t, tokens.saved, 1)
	assert.Equal(t, "access", tokens.saved[0].AccessToken)
	assert.Len(t, m.Todos(), 2)
	assert.Contains(t, m.View(), "Buy milk")
}

func TestModel_LoginRemembersEmail(t *testing.T) {
	api := newAPI()
	path := filepath.Join(t.TempDir(), "config.yaml")

	m := tui.New(api, &fakeTokens{}, &tui.Config{ServerURL: "http://localhost:8080"}, false, tui.WithConfigPath(path))
	m = send(t, m, strokes(typeKeys("jane@example.com"), keyTab, typeKeys("secret"), keyEnter)...)

	assert.Equal(t, []string{"login:jane@example.com"}, api.Calls())

	cfg, err := tui.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", cfg.Email)
}

func TestModel_LoginRequiresPassword(t *testing.T) {
	api := newAPI()

	m := tui.New(api, &fakeTokens{}, &tui.Config{Email: "jane@example.com"}, false)
	m = send(t, m, keyEnter)

	status, isErr := m.Status()
	assert.True(t, isErr)
	assert.Equal(t, "email and password are required", status)
	assert.Empty(t, api.Calls())
}

func TestModel_RefreshOnUnauthorized(t *testing.T) {
	api := newAPI()
	api.unauthorized = 1
	tokens := &fakeTokens{}

	m := tui.New(api, tokens, &tui.Config{}, true)
	m = drain(t, m, m.Init())

	assert.Equal(t, []string{"refresh"}, api.Calls())
	require.Len(t, tokens.saved, 1)
	assert.Equal(t, "access-2", tokens.saved[0].AccessToken)
	assert.Len(t, m.Todos(), 2)
}

func TestModel_RefreshFailureShowsLogin(t *testing.T) {
	api := newAPI()
	api.unauthorized = 1
	api.refreshErr = failure.Unauthorized("invalid refresh token")
	tokens := &fakeTokens{}

	m := tui.New(api, tokens, &tui.Config{}, true)
	m = drain(t, m, m.Init())

	assert.Equal(t, 1, tokens.cleared)
	assert.Contains(t, m.View(), "Password")

	status, isErr := m.Status()
	assert.True(t, isErr)
	assert.True(t, strings.Contains(status, "session expired"))
}
