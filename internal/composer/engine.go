// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"log/slog"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/directory"
	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/position"
	"github.com/jeranaias/journal-composer/internal/schema"
	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Schemas is the command schema cache as the engine uses it.
// *schema.Cache implements it.
type Schemas interface {
	mention.SchemaLookup
	commands.SchemaSource
	Invalidate(agentID string)
}

// Directory supplies the mentionable entities. *directory.Directory
// implements it.
type Directory interface {
	AgentIDs() []string
	Suggestions() []model.Suggestion
}

// Options configures an Engine.
type Options struct {
	Schemas   Schemas
	Directory Directory

	// Estimator places the popup. Without one the anchor stays zero.
	Estimator *position.Estimator

	// Keys defaults to DefaultKeyMap().
	Keys *KeyMap

	Logger *slog.Logger
}

// =============================================================================
// MESSAGES
// =============================================================================

// CommitMsg carries the buffer after a suggestion was inserted. The host
// writes it back into its editor.
type CommitMsg struct {
	Text   string
	Cursor int
}

// ValidatedMsg carries a validation report that had to wait for a schema.
type ValidatedMsg struct {
	Report commands.Report
}

// =============================================================================
// PARSE STATE
// =============================================================================

// ActiveCommand describes the command whose parameters are being typed.
type ActiveCommand struct {
	AgentID          string
	Command          model.CommandDescriptor
	CommandEndOffset int
	Anchor           position.Anchor
}

// State is a snapshot of the parse state.
// Invariant: Mode == ModeIdle implies no candidates.
type State struct {
	Mode        mention.Mode
	Query       string
	StartOffset int

	// Cursor is the cursor Query and StartOffset were computed for. While
	// Pending is set it can lag behind Engine.Cursor.
	Cursor int

	// Pending names the agent whose schema the buffer is waiting on. The
	// rest of the snapshot describes the previous buffer and cannot be
	// committed.
	Pending string

	Candidates  []mention.Candidate
	Selected    int
	Anchor      position.Anchor
	Nav         NavState

	// Active is set in parameter-hint mode only.
	Active *ActiveCommand
}

// SelectedCandidate returns the highlighted candidate.
func (s State) SelectedCandidate() (mention.Candidate, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return mention.Candidate{}, false
	}
	return s.Candidates[s.Selected], true
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine re-derives the parse state of one composer. It is driven from a
// single event loop and is not safe for concurrent use; the schema cache
// and directory it reads may be shared.
type Engine struct {
	schemas   Schemas
	dir       Directory
	estimator *position.Estimator
	validator *commands.Validator
	nav       *Navigator
	logger    *slog.Logger

	text   string
	cursor int

	result     mention.Result
	candidates []mention.Candidate
	anchor     position.Anchor

	// pending is the agent whose schema detection is waiting for.
	pending string
	// fetchedAt holds the '@' offset each agent's schema was last requested
	// for. A failed schema is only retried from a different trigger.
	fetchedAt map[string]int
	// validating is the agent whose schema a blur validation waits for.
	validating string
	// dismissed keeps the engine idle until the buffer changes.
	dismissed bool
}

// NewEngine creates an idle engine.
func NewEngine(opts Options) *Engine {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		schemas:   opts.Schemas,
		dir:       opts.Directory,
		estimator: opts.Estimator,
		nav:       NewNavigator(keys),
		logger:    logger,
		result:    mention.Idle(0),
		fetchedAt: make(map[string]int),
	}
	var src commands.SchemaSource
	if opts.Schemas != nil {
		src = opts.Schemas
	}
	e.validator = commands.NewValidator(e.agentIDs(), src)
	return e
}

// Text returns the buffer the engine last saw.
func (e *Engine) Text() string {
	return e.text
}

// Cursor returns the cursor the engine last saw.
func (e *Engine) Cursor() int {
	return e.cursor
}

// Keys returns the navigation bindings.
func (e *Engine) Keys() KeyMap {
	return e.nav.keys
}

// SetBuffer records a buffer change and re-runs detection. The returned
// command, if any, loads a schema the text needs.
func (e *Engine) SetBuffer(text string, cursor int) tea.Cmd {
	cursor = util.ClampOffset(text, cursor)
	if text == e.text && cursor == e.cursor {
		return nil
	}
	e.text, e.cursor = text, cursor
	e.dismissed = false
	return e.detect()
}

// Refresh re-runs detection against the current buffer, e.g. after the
// directory changed.
func (e *Engine) Refresh() tea.Cmd {
	if e.dismissed {
		return nil
	}
	return e.detect()
}

// Update handles messages produced by the engine's own commands and by the
// directory.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case schema.LoadedMsg:
		return e.schemaLoaded(msg)
	case directory.AgentsChangedMsg:
		if msg.Err != nil {
			return nil
		}
		return e.Refresh()
	case directory.ParticipantsLoadedMsg:
		if msg.Err != nil {
			return nil
		}
		return e.Refresh()
	case tea.KeyMsg:
		_, cmd := e.HandleKey(msg)
		return cmd
	}
	return nil
}

func (e *Engine) schemaLoaded(msg schema.LoadedMsg) tea.Cmd {
	var cmds []tea.Cmd

	if msg.AgentID == e.validating {
		e.validating = ""
		report, cmd := e.Validate()
		if cmd == nil {
			cmd = func() tea.Msg { return ValidatedMsg{Report: report} }
		}
		cmds = append(cmds, cmd)
	}

	if msg.AgentID != e.pending {
		e.logger.Debug("discarding schema result", "agent", msg.AgentID, "waiting_for", e.pending)
	} else {
		e.pending = ""
		if !e.dismissed {
			if cmd := e.detect(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// detect runs the mode detector and applies its result unless it waits on
// a schema, in which case the previous state is shown but not committable.
func (e *Engine) detect() tea.Cmd {
	e.expireTriggers()

	in := mention.Input{Text: e.text, Cursor: e.cursor, Agents: e.agentIDs()}
	res := mention.Detect(in, e.lookup())
	if e.retryFailed(res) {
		res = mention.Detect(in, e.lookup())
	}
	if res.IsPending() {
		e.pending = res.Pending
		e.fetchedAt[res.Pending] = res.TriggerOffset
		e.logger.Debug("waiting for command schema", "agent", res.Pending, "trigger", res.TriggerOffset)
		return e.schemas.Fetch(res.Pending)
	}
	e.pending = ""
	e.apply(res)
	return nil
}

// retryFailed drops a failed schema when res reaches its agent through a
// trigger other than the one that fetched it. It reports whether detection
// has to run again.
func (e *Engine) retryFailed(res mention.Result) bool {
	if res.AgentID == "" || e.schemas == nil {
		return false
	}
	if _, state := e.schemas.Lookup(res.AgentID); state != schema.StateFailed {
		return false
	}
	if off, ok := e.fetchedAt[res.AgentID]; ok && off == res.TriggerOffset {
		return false
	}
	e.logger.Debug("retrying failed command schema", "agent", res.AgentID, "trigger", res.TriggerOffset)
	e.schemas.Invalidate(res.AgentID)
	return true
}

// expireTriggers forgets fetch triggers whose "@agent" is gone from the
// buffer, e.g. after it was cleared or sent.
func (e *Engine) expireTriggers() {
	for id, off := range e.fetchedAt {
		if !hasTrigger(e.text, off, id) {
			delete(e.fetchedAt, id)
		}
	}
}

// hasTrigger reports whether text holds "@agentID" as a whole token at off.
func hasTrigger(text string, off int, agentID string) bool {
	if off < 0 || off > len(text) {
		return false
	}
	rest := text[off:]
	if !strings.HasPrefix(rest, "@"+agentID) {
		return false
	}
	after := rest[len(agentID)+1:]
	return after == "" || strings.IndexFunc(after, unicode.IsSpace) == 0
}

func (e *Engine) apply(res mention.Result) {
	if res.Mode == mention.ModeIdle {
		e.toIdle(res.Cursor)
		return
	}

	var previous string
	if c, ok := e.State().SelectedCandidate(); ok && e.result.Mode == res.Mode {
		previous = c.Key()
	}

	e.result = res
	e.candidates = mention.Candidates(res, e.suggestions(), e.lookup())

	selected := 0
	for i, c := range e.candidates {
		if previous != "" && c.Key() == previous {
			selected = i
			break
		}
	}
	e.nav.Open(len(e.candidates), selected)

	offset := res.Cursor
	if res.Mode == mention.ModeParameterHint {
		offset = res.CommandEndOffset
	}
	e.anchor = e.estimate(offset)
}

func (e *Engine) toIdle(cursor int) {
	e.result = mention.Idle(cursor)
	e.candidates = nil
	e.anchor = position.Anchor{}
	e.nav.Close()
}

func (e *Engine) estimate(offset int) position.Anchor {
	if e.estimator == nil {
		return position.Anchor{}
	}
	a, err := e.estimator.Estimate(e.text, offset)
	if err != nil {
		e.logger.Debug("popup position unavailable", "offset", offset, "error", err)
		return position.Anchor{}
	}
	return a
}

func (e *Engine) agentIDs() []string {
	if e.dir == nil {
		return nil
	}
	return e.dir.AgentIDs()
}

func (e *Engine) suggestions() []model.Suggestion {
	if e.dir == nil {
		return nil
	}
	return e.dir.Suggestions()
}

// lookup avoids handing the detector a typed nil.
func (e *Engine) lookup() mention.SchemaLookup {
	if e.schemas == nil {
		return nil
	}
	return e.schemas
}

// =============================================================================
// KEYBOARD
// =============================================================================

// HandleKey offers a key press to the suggestion list. consumed is false
// when the editor should apply its default handling.
func (e *Engine) HandleKey(msg tea.KeyMsg) (consumed bool, cmd tea.Cmd) {
	if e.result.Mode == mention.ModeIdle {
		return false, nil
	}

	switch e.nav.Handle(msg) {
	case ActionNext, ActionPrev:
		return true, nil
	case ActionCommit:
		return true, e.commit()
	case ActionCancel:
		e.dismissed = true
		e.pending = ""
		e.toIdle(e.cursor)
		return true, nil
	}
	return false, nil
}

// commit inserts the selected candidate. Parameter hints insert nothing,
// and neither does a list computed for an earlier buffer.
func (e *Engine) commit() tea.Cmd {
	if !e.result.Mode.Committable() {
		return nil
	}
	if e.pending != "" {
		e.logger.Debug("suggestion held until schema loads", "agent", e.pending)
		return nil
	}
	chosen, ok := e.State().SelectedCandidate()
	if !ok {
		return nil
	}

	text, cursor, err := mention.Commit(e.text, e.result, chosen)
	if err != nil {
		e.logger.Warn("suggestion not inserted", "mode", e.result.Mode, "candidate", chosen.Key(), "error", err)
		return nil
	}

	e.text, e.cursor = text, cursor
	e.dismissed = true
	e.pending = ""
	e.toIdle(cursor)
	return func() tea.Msg { return CommitMsg{Text: text, Cursor: cursor} }
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// State returns a snapshot of the parse state.
func (e *Engine) State() State {
	s := State{
		Mode:        e.result.Mode,
		Query:       e.result.Query,
		StartOffset: e.result.StartOffset,
		Cursor:      e.result.Cursor,
		Pending:     e.pending,
		Candidates:  append([]mention.Candidate(nil), e.candidates...),
		Selected:    e.nav.Selected(),
		Anchor:      e.anchor,
		Nav:         e.nav.State(),
	}
	if active, ok := e.ActiveCommand(); ok {
		s.Active = &active
	}
	return s
}

// Mode returns the current mode.
func (e *Engine) Mode() mention.Mode {
	return e.result.Mode
}

// Pending returns the agent whose schema detection waits for.
func (e *Engine) Pending() string {
	return e.pending
}

// ActiveCommand returns the command whose parameters are being typed.
func (e *Engine) ActiveCommand() (ActiveCommand, bool) {
	if e.result.Mode != mention.ModeParameterHint || e.result.Command == nil {
		return ActiveCommand{}, false
	}
	return ActiveCommand{
		AgentID:          e.result.AgentID,
		Command:          *e.result.Command,
		CommandEndOffset: e.result.CommandEndOffset,
		Anchor:           e.anchor,
	}, true
}

// Hint returns the parameter hint line for the active command.
func (e *Engine) Hint() string {
	active, ok := e.ActiveCommand()
	if !ok {
		return ""
	}
	return commands.HintFor(active.Command, e.result.Query)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the whole buffer as a single command invocation, e.g.
// when the editor loses focus. If the agent's schema is still loading the
// report is pending and a ValidatedMsg follows once it arrives.
func (e *Engine) Validate() (commands.Report, tea.Cmd) {
	e.validator.SetAgents(e.agentIDs())
	report := e.validator.Validate(e.text)
	if report.Pending != "" {
		e.validating = report.Pending
		return report, report.Fetch
	}
	return report, nil
}

// =============================================================================
// LINE COMPLETION
// =============================================================================

// Complete returns liner-style completions for line with the cursor at
// rune position pos: the text before the replaced range, the candidate
// insertions, and the text after the cursor. It does not touch the
// engine's parse state. A command context only completes once its schema
// is loaded; hosts without an event loop resolve it first.
func (e *Engine) Complete(line string, pos int) (head string, completions []string, tail string) {
	cursor := util.ByteOffset(line, pos)

	res := mention.Detect(mention.Input{Text: line, Cursor: cursor, Agents: e.agentIDs()}, e.lookup())
	if res.IsPending() || !res.Mode.Committable() {
		return line[:cursor], nil, line[cursor:]
	}

	for _, c := range mention.Candidates(res, e.suggestions(), e.lookup()) {
		completions = append(completions, c.Insertion())
	}
	return line[:res.StartOffset], completions, line[cursor:]
}
