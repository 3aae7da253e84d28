// Package tui is the terminal client: a todo list with inline editing, a tag
// menu and date pickers, talking to the API through internal/client.
package tui

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/credential"
	"taskboard/internal/editor"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

const (
	requestTimeout    = 15 * time.Second
	descriptionHeight = 3
	checkboxWidth     = 4
	defaultWidth      = 80
)

// API is the part of the HTTP client the terminal client needs.
type API interface {
	editor.Mutator
	Login(ctx context.Context, email, password string) (client.Tokens, error)
	Refresh(ctx context.Context) (client.Tokens, error)
	ListTodos(ctx context.Context) ([]client.Todo, error)
	ListTags(ctx context.Context) ([]client.Tag, error)
	CreateTodo(ctx context.Context, title string, description *string) (client.Todo, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	SetStartAt(ctx context.Context, id string, startAt *time.Time) error
	SetDueAt(ctx context.Context, id string, dueAt *time.Time) error
	AttachTag(ctx context.Context, todoID, tagID string) (client.AttachResult, error)
	AttachTagByName(ctx context.Context, todoID, name string, color *string) (client.AttachResult, error)
	DetachTag(ctx context.Context, todoID, tagID string) error
}

type TokenStore interface {
	Save(tokens credential.Tokens) error
	Clear() error
}

type screen int

const (
	screenLogin screen = iota
	screenList
)

type Option func(*Model)

func WithClock(clock editor.Clock) Option {
	return func(m *Model) {
		m.clock = clock
	}
}

// WithConfigPath makes a successful login remember the email in the config file.
func WithConfigPath(path string) Option {
	return func(m *Model) {
		m.configPath = path
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	api         API
	tokens      TokenStore
	keys        *KeyMap
	display     *DisplayStore
	coordinator *editor.Coordinator
	editors     map[string]*editor.Editor
	clock       editor.Clock
	cfg         *Config
	configPath  string

	screen        screen
	email         textinput.Model
	password      textinput.Model
	refreshTried  bool
	loading       bool
	width, height int

	todos  []client.Todo
	tags   []client.Tag
	cursor int

	title            textinput.Model
	description      textarea.Model
	focusDescription bool

	creating bool
	draft    textinput.Model

	overlay *overlay

	status    string
	statusErr bool
}

// New creates the root model. With loggedIn false the login form is shown first.
func New(api API, tokens TokenStore, cfg *Config, loggedIn bool, opts ...Option) Model {
	m := Model{
		api:         api,
		tokens:      tokens,
		keys:        DefaultKeyMap(),
		display:     NewDisplayStore(),
		coordinator: editor.NewCoordinator(),
		editors:     make(map[string]*editor.Editor),
		clock:       time.Now,
		cfg:         cfg,
		screen:      screenLogin,
		width:       defaultWidth,
		email:       newInput("email", 0),
		password:    newInput("password", 0),
		title:       newInput("title", 255),
		draft:       newInput("what needs to be done?", 255),
		description: newDescription(),
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'

	if cfg != nil {
		m.email.SetValue(cfg.Email)
	}

	if loggedIn {
		m.screen = screenList
		m.loading = true
	} else {
		m.focusLogin(cfg == nil || cfg.Email == "")
	}

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)

	return ti
}

func newDescription() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "description"
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(descriptionHeight)
	ta.SetWidth(defaultWidth - checkboxWidth)
	ta.Cursor.SetMode(cursor.CursorStatic)

	return ta
}

// Display exposes the header visibility store.
func (m Model) Display() *DisplayStore {
	return m.display
}

// Todos returns the todos as currently shown, including optimistic changes.
func (m Model) Todos() []client.Todo {
	return m.todos
}

// EditingID returns the todo in edit mode, or an empty string.
func (m Model) EditingID() string {
	return m.coordinator.EditingID()
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenList {
		return m.loadCmd()
	}

	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

		return m, nil

	case loadedMsg:
		return m, m.handleLoaded(msg)

	case loggedInMsg:
		return m, m.handleLoggedIn(msg)

	case refreshedMsg:
		return m, m.handleRefreshed(msg)

	case mutationDoneMsg:
		return m, m.handleMutationDone(msg)

	case closeSurfaceMsg:
		m.handleCloseSurface(msg)

		return m, nil

	case tea.MouseMsg:
		if m.screen != screenList {
			return m, nil
		}

		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.screen == screenLogin {
			return m, m.handleLoginKey(msg)
		}

		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputWidth := max(width-checkboxWidth-1, 10)

	m.title.Width = inputWidth
	m.draft.Width = inputWidth
	m.email.Width = inputWidth
	m.password.Width = inputWidth
	m.description.SetWidth(inputWidth)
}

func (m *Model) setStatus(status string) {
	m.status = status
	m.statusErr = false
}

func (m *Model) setError(action string, err error) {
	log.Error().Err(err).Msg(action)

	m.status = action + ": " + err.Error()
	m.statusErr = true
}

func (m *Model) focusLogin(email bool) {
	if email {
		m.email.Focus()
		m.password.Blur()

		return
	}

	m.email.Blur()
	m.password.Focus()
}

func (m *Model) toLogin(status string) {
	if current := m.coordinator.Current(); current != nil {
		current.Cancel()
	}

	m.screen = screenLogin
	m.overlay = nil
	m.creating = false
	m.todos = nil
	m.tags = nil
	m.editors = make(map[string]*editor.Editor)
	m.password.SetValue("")
	m.focusLogin(m.email.Value() == "")

	if status != "" {
		m.status = status
		m.statusErr = true
	}
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focusLogin(!m.email.Focused())

		return nil
	case "enter":
		if m.email.Focused() {
			m.focusLogin(false)

			return nil
		}

		if m.email.Value() == "" || m.password.Value() == "" {
			m.status = "email and password are required"
			m.statusErr = true

			return nil
		}

		m.setStatus("Logging in...")

		return m.loginCmd(m.email.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}

	return cmd
}

func (m *Model) handleLoggedIn(msg loggedInMsg) tea.Cmd {
	if msg.err != nil {
		m.setError("login failed", msg.err)

		return nil
	}

	m.saveTokens(msg.tokens)
	m.rememberEmail()
	m.password.SetValue("")
	m.email.Blur()
	m.password.Blur()
	m.screen = screenList
	m.refreshTried = false
	m.loading = true
	m.setStatus("")

	return m.loadCmd()
}

func (m *Model) handleRefreshed(msg refreshedMsg) tea.Cmd {
	if msg.err != nil {
		log.Warn().Err(msg.err).Msg("token refresh failed")

		if err := m.tokens.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear credentials")
		}

		m.toLogin("session expired, log in again")

		return nil
	}

	m.saveTokens(msg.tokens)

	return m.loadCmd()
}

func (m *Model) rememberEmail() {
	email := m.email.Value()
	if m.cfg == nil || m.configPath == "" || m.cfg.Email == email {
		return
	}

	m.cfg.Email = email

	if err := SaveConfig(m.configPath, m.cfg); err != nil {
		log.Error().Err(err).Msg("failed to save config")
	}
}

func (m *Model) saveTokens(tokens client.Tokens) {
	err := m.tokens.Save(credential.Tokens{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to save credentials")
	}
}

// authFailed starts a token refresh after a 401, once per successful load.
func (m *Model) authFailed() tea.Cmd {
	if m.refreshTried {
		m.toLogin("session expired, log in again")

		return nil
	}

	m.refreshTried = true

	return m.refreshCmd()
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	m.loading = false

	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return m.authFailed()
		}

		m.setError("failed to load todos", msg.err)

		return nil
	}

	m.refreshTried = false
	m.todos = msg.todos
	m.tags = msg.tags
	m.syncEditors()
	m.clampCursor()

	return nil
}

// syncEditors hands fresh server copies to the editors and drops editors of
// todos that no longer exist.
func (m *Model) syncEditors() {
	seen := make(map[string]struct{}, len(m.todos))

	for _, todo := range m.todos {
		seen[todo.ID] = struct{}{}

		if e, ok := m.editors[todo.ID]; ok {
			e.Reset(toEditorTodo(todo))
		}
	}

	for id, e := range m.editors {
		if _, ok := seen[id]; ok {
			continue
		}

		if e.Editing() {
			e.Cancel()
		}

		delete(m.editors, id)
	}

	if m.overlay != nil {
		if _, ok := seen[m.overlay.todoID]; !ok {
			m.overlay = nil
		}
	}
}

func (m *Model) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return m.authFailed()
		}

		m.setError(msg.action+" failed", msg.err)
	} else if msg.status != "" {
		m.setStatus(msg.status)
	}

	return m.loadCmd()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.overlay != nil:
		return m.handleOverlayKey(msg)
	case m.creating:
		return m.handleDraftKey(msg)
	case m.coordinator.Current() != nil:
		return m.handleEditKey(msg)
	}

	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

		return nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}

		return nil
	case key.Matches(msg, m.keys.Header):
		m.display.Toggle()

		return nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true

		return m.loadCmd()
	case key.Matches(msg, m.keys.New):
		m.creating = true
		m.draft.SetValue("")
		m.draft.Focus()

		return nil
	case key.Matches(msg, m.keys.Logout):
		if err := m.tokens.Clear(); err != nil {
			m.setError("logout failed", err)

			return nil
		}

		m.toLogin("")
		m.setStatus("Logged out")

		return nil
	}

	todo, ok := m.selected()
	if !ok {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit(todo.ID, editor.Target{Inside: true})
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleCompleted(todo.ID)
	case key.Matches(msg, m.keys.Delete):
		return m.deleteTodo(todo.ID)
	case key.Matches(msg, m.keys.Tags):
		return m.openOverlay(overlayTags, todo.ID)
	case key.Matches(msg, m.keys.Start):
		return m.openOverlay(overlayStart, todo.ID)
	case key.Matches(msg, m.keys.Due):
		return m.openOverlay(overlayDue, todo.ID)
	}

	return nil
}

func (m *Model) handleDraftKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.creating = false
		m.draft.Blur()

		return nil
	case "enter":
		title := strings.TrimSpace(m.draft.Value())

		m.creating = false
		m.draft.Blur()

		if title == "" {
			return nil
		}

		return m.createCmd(title)
	}

	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)

	return cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	current := m.coordinator.Current()

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.finishEdit(m.coordinator.HandleKey(editor.KeyModEnter, m.focusDescription))
	case key.Matches(msg, m.keys.Cancel):
		return m.finishEdit(m.coordinator.HandleKey(editor.KeyEscape, m.focusDescription))
	case msg.String() == "enter":
		if decision, exited := m.coordinator.HandleKey(editor.KeyEnter, m.focusDescription); exited {
			return m.finishEdit(decision, exited)
		}
	case key.Matches(msg, m.keys.SwitchField):
		m.focusField(!m.focusDescription)

		return nil
	case key.Matches(msg, m.keys.EditTags):
		return m.openOverlay(overlayTags, current.ID())
	case key.Matches(msg, m.keys.EditStart):
		return m.openOverlay(overlayStart, current.ID())
	case key.Matches(msg, m.keys.EditDue):
		return m.openOverlay(overlayDue, current.ID())
	}

	var cmd tea.Cmd

	if m.focusDescription {
		m.description, cmd = m.description.Update(msg)
		current.SetDescription(m.description.Value())
	} else {
		m.title, cmd = m.title.Update(msg)
		current.SetTitle(m.title.Value())
	}

	return cmd
}

func (m *Model) focusField(description bool) {
	m.focusDescription = description

	if description {
		m.title.Blur()
		m.description.Focus()

		return
	}

	m.description.Blur()
	m.title.Focus()
}

func (m *Model) editorFor(todo client.Todo) *editor.Editor {
	e, ok := m.editors[todo.ID]
	if !ok {
		e = editor.New(toEditorTodo(todo), editor.WithClock(m.clock))
		m.editors[todo.ID] = e
	}

	return e
}

// beginEdit puts the todo in edit mode. A todo already being edited elsewhere
// is saved first.
func (m *Model) beginEdit(id string, target editor.Target) tea.Cmd {
	todo, ok := m.find(id)
	if !ok {
		return nil
	}

	previous, entered := m.coordinator.Begin(m.editorFor(todo), target)

	cmd := m.apply(previous)

	if entered {
		e := m.editors[id]

		m.title.SetValue(e.Title())
		m.title.CursorEnd()
		m.description.SetValue(e.Description())
		m.focusField(false)

		if index, ok := m.indexOf(id); ok {
			m.cursor = index
		}
	}

	return cmd
}

// finishEdit runs after the editor left edit mode.
func (m *Model) finishEdit(decision editor.Decision, exited bool) tea.Cmd {
	if !exited {
		return nil
	}

	m.title.Blur()
	m.description.Blur()
	m.focusDescription = false

	return m.apply(decision)
}

// apply updates the local copy right away and sends the decision to the server.
func (m *Model) apply(decision editor.Decision) tea.Cmd {
	switch decision.Action {
	case editor.ActionUpdate:
		if index, ok := m.indexOf(decision.TodoID); ok {
			m.todos[index].Title = decision.Title
			m.todos[index].Description = decision.Description

			if e, ok := m.editors[decision.TodoID]; ok {
				e.Reset(toEditorTodo(m.todos[index]))
			}
		}

		return m.decisionCmd(decision, "update todo", "Saved")
	case editor.ActionDelete:
		m.removeLocal(decision.TodoID)

		return m.decisionCmd(decision, "delete todo", "Todo deleted")
	}

	return nil
}

func (m *Model) toggleCompleted(id string) tea.Cmd {
	index, ok := m.indexOf(id)
	if !ok {
		return nil
	}

	completed := !m.todos[index].Completed
	m.todos[index].Completed = completed

	return m.mutate("update todo", "", func(ctx context.Context, api API) error {
		return api.SetCompleted(ctx, id, completed)
	})
}

func (m *Model) deleteTodo(id string) tea.Cmd {
	if m.coordinator.EditingID() == id {
		return nil
	}

	m.removeLocal(id)

	return m.mutate("delete todo", "Todo deleted", func(ctx context.Context, api API) error {
		return api.DeleteTodo(ctx, id)
	})
}

func (m *Model) removeLocal(id string) {
	index, ok := m.indexOf(id)
	if !ok {
		return
	}

	m.todos = append(m.todos[:index:index], m.todos[index+1:]...)
	delete(m.editors, id)

	if m.overlay != nil && m.overlay.todoID == id {
		m.overlay = nil
	}

	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() (client.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return client.Todo{}, false
	}

	return m.todos[m.cursor], true
}

func (m *Model) find(id string) (client.Todo, bool) {
	index, ok := m.indexOf(id)
	if !ok {
		return client.Todo{}, false
	}

	return m.todos[index], true
}

func (m *Model) indexOf(id string) (int, bool) {
	for i, todo := range m.todos {
		if todo.ID == id {
			return i, true
		}
	}

	return 0, false
}

func toEditorTodo(todo client.Todo) editor.Todo {
	return editor.Todo{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
	}
}
