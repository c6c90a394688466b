package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/gate"
)

type viewMode int

const (
	modeChat viewMode = iota
	modePuzzle
)

// Messages delivered back into Update by commands.
type (
	streamMsg  StreamEvent
	sessionMsg struct {
		view *SessionView
		err  error
	}
	resolveMsg struct {
		result *ResolveResult
		err    error
	}
)

type model struct {
	client *Client
	ctx    context.Context
	cancel context.CancelFunc

	vp   viewport.Model
	ta   textarea.Model
	pass textinput.Model
	spin spinner.Model

	mode     viewMode
	thinking bool
	width    int
	height   int

	// Conversation transcript as rendered lines.
	log strings.Builder
	// Text of the assistant turn currently streaming in.
	partial strings.Builder

	gate        gate.State
	puzzle      *domain.Puzzle
	puzzleIndex int
	tokens      []gate.Token
	cursor      int

	streamCh <-chan StreamEvent
}

func newModel(client *Client) model {
	ctx, cancel := context.WithCancel(context.Background())

	ta := textarea.New()
	ta.Placeholder = "Talk to ELIZA. Enter sends, ctrl+c quits."
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	pass := textinput.New()
	pass.Placeholder = "passphrase"
	pass.CharLimit = 128

	vp := viewport.New(80, 20)
	vp.SetContent(headerView())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		client:      client,
		ctx:         ctx,
		cancel:      cancel,
		vp:          vp,
		ta:          ta,
		pass:        pass,
		spin:        sp,
		mode:        modeChat,
		gate:        gate.NewState(),
		puzzleIndex: -1,
	}
}

func headerView() string {
	return faintStyle.Render("MOSAIC University · ELIZA terminal\n") + "\n"
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, spinner.Tick, m.loadSession())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - m.ta.Height() - 3
		m.ta.SetWidth(msg.Width - 2)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modePuzzle {
			return m.updatePuzzleKeys(msg)
		}
		return m.updateChatKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case streamMsg:
		return m.updateStream(StreamEvent(msg))

	case sessionMsg:
		return m.updateSession(msg)

	case resolveMsg:
		return m.updateResolve(msg)
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit

	case "pgup":
		m.vp.LineUp(10)
		return m, nil
	case "pgdown":
		m.vp.LineDown(10)
		return m, nil

	case "ctrl+o":
		return m.openPuzzle()

	case "enter":
		if m.thinking {
			return m, nil
		}
		if m.gate.Phase == gate.PhaseBlocked {
			return m.openPuzzle()
		}
		text := strings.TrimSpace(m.ta.Value())
		if text == "" {
			return m, nil
		}
		m.ta.Reset()
		m.appendLine(userStyle.Render("you ") + text)
		m.thinking = true
		m.partial.Reset()
		m.streamCh = m.client.Chat(m.ctx, text)
		m.refresh()
		return m, tea.Batch(m.waitStream(), spinner.Tick)
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m model) updatePuzzleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit

	case "esc":
		m.gate = gate.Reduce(m.gate, m.puzzle, gate.Closed{})
		if m.gate.Phase != gate.PhaseOpen && m.gate.Phase != gate.PhaseSolved {
			m.mode = modeChat
			m.ta.Focus()
			m.pass.Blur()
		}
		return m, nil

	case "enter":
		if m.gate.Phase == gate.PhaseSolved {
			m.gate = gate.Reduce(m.gate, m.puzzle, gate.Confirmed{})
			m.mode = modeChat
			m.ta.Focus()
			m.pass.Blur()
			return m, m.resolve(m.puzzleIndex)
		}
		if m.puzzle != nil && m.puzzle.Kind == domain.PuzzlePassphrase {
			m.gate = gate.Reduce(m.gate, m.puzzle, gate.PassphraseSubmitted{Input: m.pass.Value()})
			return m, nil
		}
		return m, nil
	}

	if m.puzzle != nil && m.puzzle.Kind == domain.PuzzleSelection {
		switch msg.String() {
		case "left", "h":
			m.cursor = wordCursor(m.tokens, m.cursor, -1)
			return m, nil
		case "right", "l", "tab":
			m.cursor = wordCursor(m.tokens, m.cursor, +1)
			return m, nil
		case " ":
			m.gate = gate.Reduce(m.gate, m.puzzle, gate.SelectionToggled{Token: m.cursor})
			return m, nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pass, cmd = m.pass.Update(msg)
	return m, cmd
}

func (m model) openPuzzle() (tea.Model, tea.Cmd) {
	if m.gate.Phase != gate.PhaseBlocked || m.puzzle == nil {
		return m, nil
	}
	m.gate = gate.Reduce(m.gate, m.puzzle, gate.PuzzleOpened{Index: m.puzzleIndex})
	m.mode = modePuzzle
	m.ta.Blur()
	if m.puzzle.Kind == domain.PuzzleSelection {
		m.tokens = gate.Tokenize(m.puzzle.Paragraph)
		m.cursor = wordCursor(m.tokens, -1, +1)
	} else {
		m.pass.Reset()
		m.pass.Focus()
	}
	return m, textinput.Blink
}

func (m model) updateStream(ev StreamEvent) (tea.Model, tea.Cmd) {
	if !ev.Done {
		m.partial.WriteString(ev.Fragment)
		m.refresh()
		return m, m.waitStream()
	}

	m.thinking = false
	m.streamCh = nil

	switch {
	case ev.Err != nil:
		m.appendLine(errorStyle.Render("connection trouble: " + ev.Err.Error()))
	case ev.Blocked:
		m.appendLine(blockedStyle.Render("the interface refuses. something in the transcript is unresolved. press enter to look at it."))
	default:
		text := m.partial.String()
		if ev.Result.Payload != nil {
			text = ev.Result.Payload.Display
		}
		m.appendLine(elizaStyle.Render("eliza ") + renderAnomalyText(text))
		if ev.VoiceTrailer {
			m.appendLine(revealStyle.Render("[something else answered that one]"))
		}
	}
	m.partial.Reset()
	m.refresh()

	// Re-sync gate state and pick up the puzzle for any new anomaly.
	return m, m.loadSession()
}

func (m model) updateSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.appendLine(errorStyle.Render("session sync failed: " + msg.err.Error()))
		m.refresh()
		return m, nil
	}
	view := msg.view

	// First sync after startup replays the stored transcript.
	if m.log.Len() == 0 && len(view.Messages) > 0 {
		for i := range view.Messages {
			stored := &view.Messages[i]
			label := elizaStyle.Render("eliza ")
			if stored.Role == domain.RoleUser {
				label = userStyle.Render("you ")
			}
			m.appendLine(label + renderAnomalyText(stored.DisplayText()))
		}
	}

	m.puzzle = nil
	m.puzzleIndex = -1
	for i := len(view.Messages) - 1; i >= 0; i-- {
		if view.Messages[i].Unresolved() {
			m.puzzle = view.Messages[i].Puzzle
			m.puzzleIndex = i
			break
		}
	}
	m.gate = gate.Reduce(m.gate, m.puzzle, gate.TurnAppended{Unresolved: view.Unresolved})
	m.refresh()
	return m, nil
}

func (m model) updateResolve(msg resolveMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.appendLine(errorStyle.Render("resolve failed: " + msg.err.Error()))
		m.refresh()
		return m, m.loadSession()
	}
	m.appendLine(revealStyle.Render("the text settles:"))
	m.appendLine(msg.result.Original)
	if msg.result.Reveal != "" {
		m.appendLine(revealStyle.Render(msg.result.Reveal))
	}
	m.refresh()
	return m, m.loadSession()
}

func (m model) View() string {
	if m.mode == modePuzzle {
		return m.puzzleView()
	}

	status := ""
	switch {
	case m.thinking:
		status = m.spin.View() + " " + faintStyle.Render("thinking")
	case m.gate.Phase == gate.PhaseBlocked:
		status = blockedStyle.Render(fmt.Sprintf("gated · %d unresolved · enter or ctrl+o opens the puzzle", m.gate.Unresolved))
	default:
		status = faintStyle.Render("enter sends · pgup/pgdn scrolls · ctrl+c quits")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.vp.View(),
		status,
		m.ta.View(),
	)
}

func (m model) puzzleView() string {
	if m.puzzle == nil {
		return panelStyle.Render("nothing here")
	}
	var body string
	if m.puzzle.Kind == domain.PuzzleSelection {
		body = renderAnomalyText(renderSelectionParagraph(m.tokens, m.gate.Selected, m.cursor)) +
			"\n\n" + faintStyle.Render("some words do not belong to you. pick them in the order they appear.\n"+
			"←/→ moves · space marks · esc backs out")
	} else {
		body = m.puzzle.Ciphertext +
			"\n\n" + m.pass.View() +
			"\n" + faintStyle.Render("the fragment repeats what it was told. answer it. enter submits · esc backs out")
	}
	if line := puzzleStatusLine(m.gate); line != "" {
		body += "\n\n" + line
	}
	panel := panelStyle.Width(min(m.width-4, 84)).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func (m *model) appendLine(s string) {
	m.log.WriteString(s)
	m.log.WriteString("\n\n")
}

func (m *model) refresh() {
	content := m.log.String()
	if m.partial.Len() > 0 {
		content += elizaStyle.Render("eliza ") + m.partial.String()
	}
	m.vp.SetContent(content)
	m.vp.GotoBottom()
}

func (m model) waitStream() tea.Cmd {
	ch := m.streamCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamMsg(StreamEvent{Done: true})
		}
		return streamMsg(ev)
	}
}

func (m model) loadSession() tea.Cmd {
	return func() tea.Msg {
		view, err := m.client.Session(m.ctx)
		return sessionMsg{view: view, err: err}
	}
}

func (m model) resolve(index int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.Resolve(m.ctx, index)
		return resolveMsg{result: result, err: err}
	}
}

// wordCursor moves to the next word token in the given direction, staying
// put at the ends.
func wordCursor(tokens []gate.Token, from, dir int) int {
	for i := from + dir; i >= 0 && i < len(tokens); i += dir {
		if tokens[i].IsWord {
			return i
		}
	}
	if from < 0 {
		return 0
	}
	return from
}
