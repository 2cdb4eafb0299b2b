package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// FetchFunc reads a fresh profile.HeatingState or profile.FanCoilState.
type FetchFunc func() (interface{}, error)

// Messages for async operations
type statusMsg struct {
	state interface{}
	err   error
	at    time.Time
}

type pollTickMsg struct {
	seq int
}

// watchKeyMap defines key bindings for the watch view
type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

// WatchModel polls a device and redraws its status view.
type WatchModel struct {
	Title    string
	Subtitle string
	Interval time.Duration

	// Hints turns a read error into troubleshooting lines. Optional.
	Hints func(error) []string

	fetch   FetchFunc
	state   interface{}
	err     error
	updated time.Time
	reading bool
	seq     int // invalidates poll ticks scheduled before a manual refresh

	width   int
	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap
}

// NewWatchModel creates a watch view that calls fetch every interval.
func NewWatchModel(title, subtitle string, interval time.Duration, fetch FetchFunc) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return WatchModel{
		Title:    title,
		Subtitle: subtitle,
		Interval: interval,
		fetch:    fetch,
		reading:  true,
		width:    GetTerminalWidth(),
		spinner:  s,
		help:     help.New(),
		keys: watchKeyMap{
			Refresh: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "refresh now"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// Init starts the first read
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m WatchModel) poll() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		state, err := fetch()
		return statusMsg{state: state, err: err, at: time.Now()}
	}
}

func (m WatchModel) schedule() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.Interval, func(time.Time) tea.Msg {
		return pollTickMsg{seq: seq}
	})
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.reading {
				return m, nil
			}
			m.reading = true
			m.seq++
			return m, m.poll()
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)

	case statusMsg:
		m.reading = false
		m.err = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.updated = msg.at
		}
		m.seq++
		return m, m.schedule()

	case pollTickMsg:
		if msg.seq != m.seq || m.reading {
			return m, nil
		}
		m.reading = true
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the header, the last good status and a footer
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(NewHeader(m.Title, m.Subtitle).SetWidth(m.width).Render())
	b.WriteString("\n")

	if m.state != nil {
		if view, err := RenderStatus(m.state, m.width); err == nil {
			b.WriteString(view)
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(ErrorMessageStyle.Render("  Error: " + m.err.Error()))
		b.WriteString("\n")
		if m.Hints != nil {
			for _, hint := range m.Hints(m.err) {
				b.WriteString(TroubleshootingItemStyle.Render("    • " + hint))
				b.WriteString("\n")
			}
		}
	}

	switch {
	case m.reading:
		b.WriteString(FooterStyle.Render(m.spinner.View() + " Reading status..."))
	case !m.updated.IsZero():
		b.WriteString(FooterStyle.Render(fmt.Sprintf("Updated %s · every %s",
			m.updated.Format("15:04:05"), m.Interval)))
	}
	b.WriteString("\n\n")
	b.WriteString("  " + m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

// State returns the last successfully read status, or nil
func (m WatchModel) State() interface{} {
	return m.state
}

// Err returns the error of the last read, if it failed
func (m WatchModel) Err() error {
	return m.err
}

// RunWatch runs the watch view until the user quits
func RunWatch(m WatchModel, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
