// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/composer"
	"github.com/jeranaias/journal-composer/internal/config"
	"github.com/jeranaias/journal-composer/internal/directory"
	"github.com/jeranaias/journal-composer/internal/position"
	"github.com/jeranaias/journal-composer/internal/schema"
	"github.com/jeranaias/journal-composer/internal/ui/components"
)

// promptWidth is the cell width of the text area prompt.
const promptWidth = 2

// editorHeight is the number of rows the text area shows.
const editorHeight = 3

// =============================================================================
// MODEL
// =============================================================================

// Deps holds what the composer view is built from. Engine and Directory are
// required; the rest is optional.
type Deps struct {
	Engine    *composer.Engine
	Directory *directory.Directory

	// Estimator is the engine's estimator; its layout follows the window.
	Estimator *position.Estimator
	UI        config.UIConfig

	// Watcher hot-reloads the agents file.
	Watcher *directory.Watcher

	// Participants loads the conversation's participants on start.
	Participants   directory.ParticipantSource
	ConversationID string

	Keys   *KeyMap
	Logger *slog.Logger
}

// SentMessage is a message that left the composer.
type SentMessage struct {
	Text   string
	At     time.Time
	Report *commands.Report
}

// Model is the Bubble Tea model for the composer view.
type Model struct {
	// Terminal dimensions
	width  int
	height int

	// The text area lives behind a pointer so the editor adapter and
	// controller stay valid across Model copies.
	input      *textarea.Model
	editor     *textareaEditor
	engine     *composer.Engine
	controller *composer.Controller
	popup      *components.SuggestionPopup
	spinner    components.Spinner

	dir            *directory.Directory
	estimator      *position.Estimator
	ui             config.UIConfig
	watcher        *directory.Watcher
	participants   directory.ParticipantSource
	conversationID string

	keys   KeyMap
	logger *slog.Logger

	sent []SentMessage

	// report is the last validation outcome.
	report *commands.Report
	// submitting holds text whose validation waits for a schema.
	submitting string
	toasts     *components.ToastManager
	showHelp   bool
}

// New creates the composer view.
func New(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Write a message, @ to mention"
	ta.Prompt = "| "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(editorHeight)
	ta.Focus()

	keys := DefaultKeyMap()
	if deps.Keys != nil {
		keys = *deps.Keys
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ui := deps.UI
	if ui.PopupWidth == 0 {
		ui = config.Default().UI
	}

	editor := newTextareaEditor(&ta)
	return Model{
		input:          &ta,
		editor:         editor,
		engine:         deps.Engine,
		controller:     composer.NewController(editor, deps.Engine),
		popup:          components.NewSuggestionPopup(ui.PopupWidth, ui.MaxVisible),
		spinner:        components.NewSpinner(),
		toasts:         components.NewToastManager(),
		dir:            deps.Directory,
		estimator:      deps.Estimator,
		ui:             ui,
		watcher:        deps.Watcher,
		participants:   deps.Participants,
		conversationID: deps.ConversationID,
		keys:           keys,
		logger:         logger,
	}
}

// Init starts the cursor blink, the agents file watch and the participant
// load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.WaitForChange())
	}
	if m.participants != nil && m.conversationID != "" && m.dir != nil {
		cmds = append(cmds, m.dir.LoadParticipantsCmd(m.participants, m.conversationID))
	}
	return tea.Batch(cmds...)
}

// Controller returns the controller for the composer's editor.
func (m Model) Controller() *composer.Controller {
	return m.controller
}

// Value returns the editor content.
func (m Model) Value() string {
	return m.input.Value()
}

// Sent returns the messages sent so far.
func (m Model) Sent() []SentMessage {
	return append([]SentMessage(nil), m.sent...)
}

// Report returns the last validation outcome, if any.
func (m Model) Report() (commands.Report, bool) {
	if m.report == nil {
		return commands.Report{}, false
	}
	return *m.report, true
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(Model)
	spin := nm.syncSpinner()
	return nm, tea.Batch(cmd, spin)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case composer.CommitMsg:
		m.controller.Apply(msg)
		m.syncPopup()
		return m, nil

	case composer.ValidatedMsg:
		return m.handleValidated(msg.Report)

	case schema.LoadedMsg:
		if msg.Err != nil && !msg.Stale {
			m.toasts.AddError("commands for @" + msg.AgentID + " unavailable")
		}
		cmd := m.engine.Update(msg)
		m.syncPopup()
		return m, cmd

	case directory.AgentsChangedMsg:
		if msg.Err != nil {
			m.toasts.AddError("agents file: " + msg.Err.Error())
		} else {
			m.toasts.AddStatus(fmt.Sprintf("agents file reloaded (%d agents)", len(msg.Agents)))
		}
		cmd := m.engine.Update(msg)
		m.syncPopup()
		if m.watcher != nil {
			cmd = tea.Batch(cmd, m.watcher.WaitForChange())
		}
		return m, cmd

	case directory.ParticipantsLoadedMsg:
		if msg.Err != nil {
			m.toasts.AddWarning("participants unavailable")
		}
		cmd := m.engine.Update(msg)
		m.syncPopup()
		return m, cmd
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	inputWidth := m.width - 2
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	if m.estimator != nil {
		layout := m.ui.Layout(float64(m.width))
		if layout.PaddingLeft == 0 {
			layout.PaddingLeft = promptWidth
		}
		if layout.ContentWidth == 0 {
			layout.ContentWidth = float64(inputWidth - promptWidth)
		}
		m.estimator.SetLayout(layout)
	}
	if avail := m.width - 2; avail < m.ui.PopupWidth {
		m.popup.SetWidth(avail)
	} else {
		m.popup.SetWidth(m.ui.PopupWidth)
	}

	cmd := m.engine.Refresh()
	m.syncPopup()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// The suggestion list gets first refusal.
	if consumed, cmd := m.engine.HandleKey(msg); consumed {
		m.syncPopup()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Validate):
		return m.validate()
	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		m.report = nil
		m.submitting = ""
		cmd := m.engine.SetBuffer("", 0)
		m.syncPopup()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	var inputCmd tea.Cmd
	*m.input, inputCmd = m.input.Update(msg)
	engineCmd := m.engine.SetBuffer(m.editor.Value(), m.editor.CursorOffset())
	m.syncPopup()
	return m, tea.Batch(inputCmd, engineCmd)
}

// syncSpinner runs the spinner while a schema the user is waiting on loads.
func (m *Model) syncSpinner() tea.Cmd {
	agent := m.engine.Pending()
	if agent == "" && m.submitting != "" {
		if inv, ok := commands.ParseInvocation(m.submitting); ok {
			agent = inv.AgentID
		}
	}
	if agent == "" {
		m.spinner.Stop()
		return nil
	}
	return m.spinner.Start("loading commands for @" + agent)
}

// syncPopup copies the engine's candidates into the popup.
func (m *Model) syncPopup() {
	st := m.engine.State()
	m.popup.SetCandidates(st.Candidates, st.Selected)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// isInvocation reports whether text addresses a known agent and so should
// be checked as a command before it is sent.
func (m Model) isInvocation(text string) bool {
	inv, ok := commands.ParseInvocation(text)
	if !ok || m.dir == nil {
		return false
	}
	_, known := m.dir.Agent(inv.AgentID)
	return known
}

func (m Model) validate() (tea.Model, tea.Cmd) {
	report, cmd := m.engine.Validate()
	m.report = &report
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if !m.isInvocation(text) {
		return m, m.send(text, nil)
	}

	report, cmd := m.engine.Validate()
	m.report = &report
	if report.Pending != "" {
		m.submitting = text
		return m, cmd
	}
	if !report.OK() {
		return m, nil
	}
	return m, m.send(text, &report)
}

func (m Model) handleValidated(report commands.Report) (tea.Model, tea.Cmd) {
	m.report = &report
	if m.submitting == "" {
		return m, nil
	}
	text := m.submitting
	m.submitting = ""
	if !report.OK() || strings.TrimSpace(m.input.Value()) != text {
		return m, nil
	}
	return m, m.send(text, &report)
}

// send records text as sent and empties the editor.
func (m *Model) send(text string, report *commands.Report) tea.Cmd {
	m.sent = append(m.sent, SentMessage{Text: text, At: time.Now(), Report: report})
	m.input.Reset()
	m.toasts.Clear()
	m.logger.Info("message sent", "conversation", m.conversationID, "bytes", len(text), "command", report != nil)
	cmd := m.engine.SetBuffer("", 0)
	m.syncPopup()
	return cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the composer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderMessages(),
		m.renderEditor(),
		m.renderStatusBar(),
	)
}
