package tui

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"datpeek/internal/log"
	"datpeek/internal/preview"
	"datpeek/internal/status"
	"datpeek/internal/tui/common"
	"datpeek/internal/tui/components"
	"datpeek/internal/tui/messages"
	"datpeek/internal/tui/styles"
	"datpeek/internal/tui/views"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxTextBytes bounds how much of a container the text view dumps.
const maxTextBytes = 16 * 1024

type tab struct {
	id      int
	session *preview.Session
	title   string
	loading bool
	active  bool
	frame   common.FrameInfo
}

// Model is the terminal previewer. Every open container gets a tab backed by
// its own preview session.
type Model struct {
	ctx     context.Context
	coord   *preview.Coordinator
	storage preview.Storage
	display *status.Display
	send    func(tea.Msg)
	paths   []string

	tabs     []*tab
	current  int
	nextID   int
	mode     common.Mode
	showHelp bool

	prompt textinput.Model
	reply  chan<- messages.PromptReply
	text   string

	statusBar *components.StatusBar
	statusMsg string
	width     int

	// set from session goroutines through the coordinator
	active atomic.Bool
}

// New creates a model that opens paths once the program starts. Sessions
// report to the program through the sender given to SetSender.
func New(ctx context.Context, storage preview.Storage, watcher preview.Watcher, opts preview.Options, paths []string) *Model {
	m := &Model{
		ctx:       ctx,
		storage:   storage,
		paths:     paths,
		mode:      common.Normal,
		prompt:    textinput.New(),
		statusBar: components.NewStatusBar(),
	}

	item := func() status.Item { return &redrawItem{send: m.post} }
	m.display = status.NewDisplay(item(), item(), item(), item())

	m.coord = preview.NewCoordinator(preview.Deps{
		Storage:         storage,
		Watcher:         watcher,
		Dialog:          &promptDialog{send: m.post},
		Display:         m.display,
		Options:         opts,
		OnActiveChanged: m.active.Store,
	})
	return m
}

// SetSender sets how sessions reach the program, usually tea.Program.Send.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

func (m *Model) post(msg tea.Msg) {
	if m.send != nil {
		m.send(msg)
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.statusBar.Tick()}
	for _, path := range m.paths {
		path := path
		cmds = append(cmds, func() tea.Msg { return messages.OpenMsg{Path: path} })
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m, m.width)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.FocusMsg:
		if t := m.currentTab(); t != nil {
			m.coord.FocusChanged(t.session, true)
		}

	case tea.BlurMsg:
		if t := m.currentTab(); t != nil {
			m.coord.FocusChanged(t.session, false)
		}

	case messages.OpenMsg:
		m.open(msg.Path)

	case messages.FrameMsg:
		if t := m.tabByID(msg.TabID); t != nil {
			t.frame = msg.Frame
			t.title = filepath.Base(msg.Frame.Resource)
		}

	case messages.PostMsg:
		m.handlePost(msg)

	case messages.TextMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Cannot open %s as text: %v", filepath.Base(msg.Path), msg.Err)
			break
		}
		m.text = hexDump(msg.Data)
		m.mode = common.Text

	case messages.CloseMsg:
		m.removeTab(msg.TabID)

	case messages.PromptMsg:
		m.startPrompt(msg)

	case messages.ErrorMsg:
		m.statusMsg = msg.Err.Error()

	case messages.StatusMsg:
		// slots are read on render

	default:
		return m, m.statusBar.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case common.Prompt:
		return m.handlePromptKeys(msg)
	case common.Text:
		switch msg.String() {
		case "esc", "q", "t":
			m.mode = common.Normal
			m.text = ""
		case "ctrl+c":
			return m.quit()
		}
		return m, nil
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "n", "right":
		if m.requireActive() {
			m.coord.Next()
		}
	case "p", "left":
		if m.requireActive() {
			m.coord.Previous()
		}
	case "e":
		if m.requireActive() {
			m.coord.Export()
		}
	case "t":
		if t := m.currentTab(); t != nil {
			t.session.Receive(preview.CommandMessage(preview.MsgReopenAsText))
		}
	case "tab":
		m.selectTab(m.current + 1)
	case "shift+tab":
		m.selectTab(m.current - 1)
	case "x":
		if t := m.currentTab(); t != nil {
			m.coord.Dispose(t.session)
			m.removeTab(t.id)
		}
	case "?":
		m.showHelp = !m.showHelp
	case "esc":
		m.showHelp = false
	case "q", "ctrl+c":
		return m.quit()
	}
	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := m.prompt.Value()
		m.answerPrompt(messages.PromptReply{Path: path, OK: path != ""})
		return m, nil
	case "esc":
		m.answerPrompt(messages.PromptReply{})
		return m, nil
	case "ctrl+c":
		m.answerPrompt(messages.PromptReply{})
		return m.quit()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) requireActive() bool {
	if !m.active.Load() {
		m.statusMsg = "No preview has focus"
		return false
	}
	return true
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.coord.Close()
	return m, tea.Quit
}

func (m *Model) open(path string) {
	m.nextID++
	surface := &teaSurface{id: m.nextID, send: m.post, storage: m.storage}

	session, err := m.coord.Open(m.ctx, path, surface)
	if err != nil {
		log.LogWithError(err).Warn("Cannot open preview")
		m.statusMsg = fmt.Sprintf("Cannot open %s: %v", path, err)
		return
	}

	m.tabs = append(m.tabs, &tab{
		id:      m.nextID,
		session: session,
		title:   filepath.Base(path),
		loading: true,
	})
	m.current = len(m.tabs) - 1
}

func (m *Model) selectTab(index int) {
	if len(m.tabs) < 2 {
		return
	}
	index = (index + len(m.tabs)) % len(m.tabs)
	if index == m.current {
		return
	}
	m.coord.FocusChanged(m.tabs[m.current].session, false)
	m.current = index
	m.coord.FocusChanged(m.tabs[m.current].session, true)
}

func (m *Model) removeTab(id int) {
	for i, t := range m.tabs {
		if t.id != id {
			continue
		}
		m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
		wasCurrent := i == m.current
		if i < m.current || m.current >= len(m.tabs) {
			m.current--
		}
		if m.current < 0 {
			m.current = 0
		}
		if wasCurrent {
			if next := m.currentTab(); next != nil {
				m.coord.FocusChanged(next.session, true)
			}
		}
		return
	}
}

func (m *Model) handlePost(msg messages.PostMsg) {
	t := m.tabByID(msg.TabID)
	if t == nil {
		return
	}
	switch msg.Message.Type {
	case preview.MsgLoading:
		t.loading = true
	case preview.MsgLoadingSuccess:
		t.loading = false
	case preview.MsgSetActive:
		active, _ := msg.Message.Value.(bool)
		t.active = active
	}
}

func (m *Model) startPrompt(msg messages.PromptMsg) {
	if m.reply != nil {
		m.answerPrompt(messages.PromptReply{})
	}
	m.reply = msg.Reply
	m.prompt.Prompt = fmt.Sprintf("Export %s to: ", msg.Title)
	m.prompt.SetValue(msg.DefaultPath)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.mode = common.Prompt
}

func (m *Model) answerPrompt(reply messages.PromptReply) {
	if m.reply != nil {
		m.reply <- reply
		m.reply = nil
	}
	m.prompt.Blur()
	m.mode = common.Normal
	if reply.OK {
		m.statusMsg = "Exporting to " + reply.Path
	}
}

func (m *Model) currentTab() *tab {
	if m.current < 0 || m.current >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.current]
}

func (m *Model) tabByID(id int) *tab {
	for _, t := range m.tabs {
		if t.id == id {
			return t
		}
	}
	return nil
}

// ModelReader

func (m *Model) Tabs() []common.TabInfo {
	infos := make([]common.TabInfo, len(m.tabs))
	for i, t := range m.tabs {
		infos[i] = common.TabInfo{Title: t.title, Active: t.active, Loading: t.loading, Frame: t.frame}
	}
	return infos
}

func (m *Model) Current() int      { return m.current }
func (m *Model) Mode() common.Mode { return m.mode }
func (m *Model) ShowHelp() bool    { return m.showHelp }
func (m *Model) TextView() string  { return m.text }
func (m *Model) StatusMsg() string { return m.statusMsg }

func (m *Model) PromptView() string {
	return m.prompt.View()
}

// StatusView renders the visible status slots.
func (m *Model) StatusView() string {
	var slots []string
	for _, slot := range []*status.Slot{m.display.Size, m.display.Dimensions, m.display.CreatedAt, m.display.FileName} {
		if slot.Visible() && slot.Text() != "" {
			slots = append(slots, slot.Text())
		}
	}
	m.statusBar.SetSlots(slots)

	t := m.currentTab()
	m.statusBar.SetLoading(t != nil && t.loading)
	return m.statusBar.View()
}

func hexDump(data []byte) string {
	if len(data) <= maxTextBytes {
		return hex.Dump(data)
	}
	return hex.Dump(data[:maxTextBytes]) +
		styles.Theme.Help.Render(fmt.Sprintf("... %d more bytes not shown", len(data)-maxTextBytes)) + "\n"
}

// redrawItem is a status item the model reads back through the display. It
// only asks the program to redraw. Slots change from session goroutines and
// from Update itself, so the request is sent asynchronously.
type redrawItem struct {
	send func(tea.Msg)
}

func (r *redrawItem) SetText(string) {}
func (r *redrawItem) Show()          { go r.send(messages.StatusMsg{}) }
func (r *redrawItem) Hide()          { go r.send(messages.StatusMsg{}) }
