package tui

import (
	"context"
	"os"
	"strings"
	"time"

	"talino-cli/internal/app"
	"talino-cli/internal/chat"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChat
	focusSidebar
	focusChips
)

type spinMsg struct{}

type ctrlEventMsg struct{ ev chat.Event }

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type keyMap struct {
	Quit          key.Binding
	CancelOrQuit  key.Binding
	NewChat       key.Binding
	ToggleSidebar key.Binding
	FocusNext     key.Binding
	Back          key.Binding
	Forward       key.Binding
	Enter         key.Binding
	VoteUp        key.Binding
	VoteDown      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("ctrl+d")),
		CancelOrQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		NewChat:       key.NewBinding(key.WithKeys("ctrl+n")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b")),
		FocusNext:     key.NewBinding(key.WithKeys("tab")),
		Back:          key.NewBinding(key.WithKeys("alt+left")),
		Forward:       key.NewBinding(key.WithKeys("alt+right")),
		Enter:         key.NewBinding(key.WithKeys("enter")),
		VoteUp:        key.NewBinding(key.WithKeys("+")),
		VoteDown:      key.NewBinding(key.WithKeys("-")),
	}
}

// MainModel renders session-controller snapshots and translates key
// presses into controller calls. It holds no conversation state of its
// own beyond cursor positions.
type MainModel struct {
	app  *app.Application
	ctrl *chat.Controller

	theme    Theme
	keys     keyMap
	markdown *MarkdownRenderer

	snap chat.Snapshot

	width  int
	height int
	ready  bool

	focus       focusArea
	showSidebar bool
	sideSel     int
	chipSel     int

	input  textarea.Model
	chatVP viewport.Model

	spinnerPos int
	authHint   bool
}

func NewMainModel(application *app.Application) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, then press Enter."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	t := ResolveTheme(application.Config.Theme)
	return &MainModel{
		app:         application,
		ctrl:        application.Controller,
		theme:       t,
		keys:        newKeyMap(),
		markdown:    NewMarkdownRenderer(t),
		snap:        application.Controller.Snapshot(),
		width:       100,
		height:      30,
		focus:       focusInput,
		showSidebar: true,
		input:       ta,
	}
}

func (m *MainModel) Init() tea.Cmd {
	probe := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.app.ProbeIdentity(ctx)
		return nil
	}
	return tea.Batch(textarea.Blink, m.waitEvent(), probe)
}

func (m *MainModel) waitEvent() tea.Cmd {
	ch := m.ctrl.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ctrlEventMsg{ev: ev}
	}
}

func (m *MainModel) spinTick() tea.Cmd {
	d := 90 * time.Millisecond
	if os.Getenv("TALINO_REDUCE_MOTION") == "1" {
		d = 250 * time.Millisecond
	}
	return tea.Tick(d, func(_ time.Time) tea.Msg { return spinMsg{} })
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.ChatW, layout.ChatH)
			m.ready = true
		} else {
			m.chatVP.Width = layout.ChatW
			m.chatVP.Height = layout.ChatH
		}
		m.input.SetWidth(maxInt(10, layout.InputW))
		m.refreshViewport()
		return m, nil

	case ctrlEventMsg:
		m.snap = m.ctrl.Snapshot()
		if msg.ev.Kind == chat.EventAuthPrompt {
			m.authHint = true
		}
		m.clampCursors()
		m.refreshViewport()
		m.chatVP.GotoBottom()
		cmds = append(cmds, m.waitEvent())
		if m.snap.Generating || m.snap.RelatedLoading {
			cmds = append(cmds, m.spinTick())
		}
		return m, tea.Batch(cmds...)

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.snap.Generating || m.snap.RelatedLoading {
			m.refreshViewport()
			return m, m.spinTick()
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.CancelOrQuit):
		if m.snap.Generating {
			m.ctrl.Stop()
			return nil, true
		}
		return tea.Quit, true

	case key.Matches(msg, m.keys.NewChat):
		m.ctrl.ResetChat()
		m.authHint = false
		m.input.Reset()
		return nil, true

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && m.focus == focusSidebar {
			m.setFocus(focusInput)
		}
		m.refreshViewport()
		return nil, true

	case key.Matches(msg, m.keys.FocusNext):
		m.cycleFocus()
		return nil, true

	case key.Matches(msg, m.keys.Back):
		m.ctrl.NavigateBack()
		return nil, true

	case key.Matches(msg, m.keys.Forward):
		m.ctrl.NavigateForward()
		return nil, true

	case key.Matches(msg, m.keys.Enter):
		return m.onEnter(), true

	case key.Matches(msg, m.keys.VoteUp) && m.focus == focusChat:
		m.vote(chat.FeedbackUp)
		return nil, true

	case key.Matches(msg, m.keys.VoteDown) && m.focus == focusChat:
		m.vote(chat.FeedbackDown)
		return nil, true

	case msg.Type == tea.KeyUp:
		switch m.focus {
		case focusChat:
			m.chatVP.LineUp(1)
			return nil, true
		case focusSidebar:
			m.moveSidebar(-1)
			return nil, true
		}
	case msg.Type == tea.KeyDown:
		switch m.focus {
		case focusChat:
			m.chatVP.LineDown(1)
			return nil, true
		case focusSidebar:
			m.moveSidebar(1)
			return nil, true
		}
	case msg.Type == tea.KeyLeft:
		if m.focus == focusChips {
			m.moveChip(-1)
			return nil, true
		}
	case msg.Type == tea.KeyRight:
		if m.focus == focusChips {
			m.moveChip(1)
			return nil, true
		}
	case msg.Type == tea.KeyPgUp:
		m.chatVP.ViewUp()
		return nil, true
	case msg.Type == tea.KeyPgDown:
		m.chatVP.ViewDown()
		return nil, true
	}
	return nil, false
}

func (m *MainModel) onEnter() tea.Cmd {
	switch m.focus {
	case focusSidebar:
		convs := m.snap.Conversations
		if m.sideSel >= 0 && m.sideSel < len(convs) {
			m.ctrl.OpenConversation(convs[m.sideSel].ID)
			m.setFocus(focusInput)
		}
		return nil
	case focusChips:
		chips := m.chips()
		if m.chipSel >= 0 && m.chipSel < len(chips) {
			m.ctrl.Submit(chips[m.chipSel].Value)
			m.setFocus(focusInput)
		}
		return nil
	default:
		val := m.input.Value()
		if strings.TrimSpace(val) == "" {
			return nil
		}
		m.input.Reset()
		m.ctrl.Submit(val)
		return m.spinTick()
	}
}

func (m *MainModel) vote(v chat.Feedback) {
	// Feedback lands on the latest settled assistant message.
	for i := len(m.snap.Messages) - 1; i >= 0; i-- {
		msg := m.snap.Messages[i]
		if msg.Role == chat.RoleAssistant && msg.Complete {
			m.ctrl.SetFeedback(i, v)
			return
		}
	}
}

// chips returns whichever suggestion row applies: the starter prompts on
// a fresh welcome screen, related questions after a settled turn.
func (m *MainModel) chips() []chat.Suggestion {
	if m.snap.Welcome && !m.snap.HasInteracted {
		return chat.DefaultPrompts
	}
	if m.snap.Turn == chat.TurnSettled {
		return m.snap.Related
	}
	return nil
}

func (m *MainModel) cycleFocus() {
	order := []focusArea{focusInput, focusChat, focusSidebar, focusChips}
	cur := 0
	for i, f := range order {
		if f == m.focus {
			cur = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		next := order[(cur+i)%len(order)]
		if next == focusSidebar && !m.showSidebar {
			continue
		}
		if next == focusChips && len(m.chips()) == 0 {
			continue
		}
		m.setFocus(next)
		return
	}
}

func (m *MainModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *MainModel) moveSidebar(delta int) {
	n := len(m.snap.Conversations)
	if n == 0 {
		return
	}
	m.sideSel = clamp(m.sideSel+delta, 0, n-1)
}

func (m *MainModel) moveChip(delta int) {
	n := len(m.chips())
	if n == 0 {
		return
	}
	m.chipSel = clamp(m.chipSel+delta, 0, n-1)
}

func (m *MainModel) clampCursors() {
	if n := len(m.snap.Conversations); n > 0 {
		m.sideSel = clamp(m.sideSel, 0, n-1)
	} else {
		m.sideSel = 0
	}
	if n := len(m.chips()); n > 0 {
		m.chipSel = clamp(m.chipSel, 0, n-1)
	} else {
		m.chipSel = 0
	}
	if m.focus == focusChips && len(m.chips()) == 0 {
		m.setFocus(focusInput)
	}
}

type layoutInfo struct {
	MainH  int
	ChatW  int
	ChatH  int
	SideW  int
	InputW int
}

func (m *MainModel) computeLayout() layoutInfo {
	top, foot, inputH, chipsH := 1, 1, 3, 1
	mainH := m.height - top - foot - inputH - chipsH
	if mainH < 3 {
		mainH = 3
	}

	side := 0
	chatW := m.width
	if m.showSidebar && m.width >= 90 {
		side = 28
		chatW = m.width - side - 1
	}
	return layoutInfo{
		MainH:  mainH,
		ChatW:  chatW,
		ChatH:  mainH,
		SideW:  side,
		InputW: chatW - 4,
	}
}

func (m *MainModel) View() string {
	if !m.ready {
		return "…"
	}
	layout := m.computeLayout()
	sections := []string{
		m.renderTopBar(),
		m.renderMain(layout),
		m.renderChips(layout),
		m.renderInputArea(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *MainModel) renderTopBar() string {
	left := m.theme.TopBarTitle.Render("TALINO") + " " + m.theme.TopBarBadge.Render("AI")

	status := "Ready"
	switch {
	case m.snap.Turn == chat.TurnAwaitingReply:
		status = "Thinking…"
	case m.snap.Turn == chat.TurnRevealing:
		status = "Replying…"
	case m.snap.RelatedLoading:
		status = "Finding related questions…"
	}
	if m.snap.Generating || m.snap.RelatedLoading {
		status = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos] + " " + status)
	} else {
		status = m.theme.TopBarMeta.Render(status)
	}

	who := "guest"
	if m.snap.User != nil {
		who = m.snap.User.Email
	}
	right := m.theme.TopBarMeta.Render(who)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + status + strings.Repeat(" ", b) + right)
}

func (m *MainModel) renderMain(l layoutInfo) string {
	chatPane := m.renderChatPane(l)
	if l.SideW <= 0 {
		return chatPane
	}
	side := m.renderSidebar(l)
	sep := m.theme.PaneDivider.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, side, sep, chatPane)
}

func (m *MainModel) renderSidebar(l layoutInfo) string {
	box := m.theme.Pane
	title := m.theme.PaneTitle.Render("History")
	if m.focus == focusSidebar {
		box = m.theme.PaneFocused
		title = m.theme.PaneTitleF.Render("History")
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	switch {
	case m.snap.User == nil:
		b.WriteString(m.theme.Muted.Render("Sign in to save\nconversations."))
	case len(m.snap.Conversations) == 0:
		b.WriteString(m.theme.Muted.Render("No conversations yet."))
	default:
		visible := l.MainH - 3
		if visible < 1 {
			visible = 1
		}
		for i, conv := range m.snap.Conversations {
			if i >= visible {
				break
			}
			line := truncateRunes(conv.Title, l.SideW-6)
			style := m.theme.SidebarItem
			prefix := "  "
			if i == m.sideSel && m.focus == focusSidebar {
				style = m.theme.SidebarSel
				prefix = "> "
			}
			if conv.ID == m.snap.ConversationID {
				style = style.Underline(true)
			}
			b.WriteString(style.Render(prefix+line) + "\n")
		}
	}
	return box.Width(l.SideW).Height(l.ChatH).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *MainModel) renderChatPane(l layoutInfo) string {
	box := m.theme.Pane
	if m.focus == focusChat {
		box = m.theme.PaneFocused
	}
	if m.snap.Welcome {
		return box.Width(l.ChatW).Height(l.ChatH).Render(m.renderWelcome(l))
	}
	return box.Width(l.ChatW).Height(l.ChatH).Render(m.chatVP.View())
}

func (m *MainModel) renderWelcome(l layoutInfo) string {
	title := m.theme.WelcomeTitle.Render("Welcome to TALINO.AI")
	tagline := m.theme.WelcomeTagline.Render("Science and Technology Within Everyone's Reach")
	hint := m.theme.Muted.Render("Type a question below, or pick a starter with Tab.")
	block := lipgloss.JoinVertical(lipgloss.Center, title, tagline, "", hint)
	return lipgloss.Place(l.ChatW-2, l.ChatH-2, lipgloss.Center, lipgloss.Center, block)
}

func (m *MainModel) renderChips(l layoutInfo) string {
	chips := m.chips()
	if m.snap.RelatedLoading {
		return m.theme.Muted.Render(" " + spinnerFrames[m.spinnerPos] + " Finding related questions…")
	}
	if len(chips) == 0 {
		return ""
	}
	var parts []string
	budget := m.width
	for i, c := range chips {
		style := m.theme.Chip
		if i == m.chipSel && m.focus == focusChips {
			style = m.theme.ChipSel
		}
		rendered := style.Render(truncateRunes(c.Title, 40))
		budget -= lipgloss.Width(rendered) + 1
		if budget < 0 {
			break
		}
		parts = append(parts, rendered)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *MainModel) renderInputArea() string {
	box := m.theme.InputBox
	if m.focus == focusInput {
		box = m.theme.InputBoxF
	}
	return box.Width(maxInt(10, m.width-2)).Render(m.input.View())
}

func (m *MainModel) renderFooter() string {
	hints := "Tab focus  Ctrl+B history  Ctrl+N new chat  Ctrl+C stop/quit  Alt+←/→ back/forward"
	if m.width < 100 {
		hints = "Tab focus  Ctrl+N new  Ctrl+C stop/quit"
	}
	if m.authHint && m.snap.User == nil {
		hints = "Sign in (talino login) to save this conversation.  " + hints
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

func (m *MainModel) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.computeLayout().ChatW - 4
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	for i, msg := range m.snap.Messages {
		b.WriteString(m.renderMessage(i, msg, width))
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *MainModel) renderMessage(index int, msg chat.Message, width int) string {
	var header string
	switch msg.Role {
	case chat.RoleUser:
		header = m.theme.RoleYou.Render("YOU")
	default:
		header = m.theme.RoleAI.Render("TALINO")
	}
	if v, ok := m.snap.Feedback[index]; ok {
		mark := "▲"
		if v == chat.FeedbackDown {
			mark = "▼"
		}
		header += " " + m.theme.Muted.Render(mark)
	}

	var body string
	switch {
	case msg.Loading && msg.Content == "":
		body = m.theme.Muted.Render(spinnerFrames[m.spinnerPos] + " …")
	case msg.Role == chat.RoleAssistant:
		body = m.markdown.Render(msg.Content, width)
	default:
		body = lipgloss.NewStyle().Foreground(m.theme.TextPrimary).Width(width).Render(msg.Content)
	}
	return header + "\n" + body
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(r[:maxRunes])
	}
	return string(r[:maxRunes-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
