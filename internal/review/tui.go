// Package review is the interactive application review TUI: a scrollable
// list of tracked applications whose statuses the user advances in place.
package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobsniper-dev/jobsniper/internal/tracker"
)

// Lines per application in the list (title + subtitle + blank separator).
const appItemHeight = 3

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	appTitleStyle = lipgloss.NewStyle().
			Bold(true)

	appSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

var statusColors = map[tracker.Status]string{
	tracker.StatusNotApplied:   "245", // gray
	tracker.StatusApplied:      "33",  // blue
	tracker.StatusOngoing:      "178", // yellow
	tracker.StatusInterviewing: "208", // orange
	tracker.StatusSelected:     "40",  // green
	tracker.StatusRejected:     "196", // red
}

func renderStatus(s tracker.Status) string {
	color, ok := statusColors[s]
	if !ok {
		color = "245"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(s))
}

// statusUpdatedMsg is sent when an async status write completes.
type statusUpdatedMsg struct {
	url    string
	status tracker.Status
	err    error
}

type reviewModel struct {
	tracker  *tracker.Tracker
	apps     []tracker.Application
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	errText  string
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case statusUpdatedMsg:
		if msg.err != nil {
			m.errText = fmt.Sprintf("status update failed: %v", msg.err)
		} else {
			m.errText = ""
			for i := range m.apps {
				if m.apps[i].URL == msg.url {
					m.apps[i].Status = msg.status
					break
				}
			}
		}
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "s", "enter":
			return m.advanceStatus()
		case "o":
			if len(m.apps) > 0 {
				openURL(m.apps[m.cursor].URL)
			}
			return m, nil
		}

		// Forward other keys (pgup/pgdn/home/end) to the viewport.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m reviewModel) advanceStatus() (tea.Model, tea.Cmd) {
	if len(m.apps) == 0 {
		return m, nil
	}
	app := m.apps[m.cursor]
	next := app.Status.Next()
	tr := m.tracker
	return m, func() tea.Msg {
		err := tr.SetStatus(app.URL, next)
		return statusUpdatedMsg{url: app.URL, status: next, err: err}
	}
}

func (m *reviewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.apps)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * appItemHeight
	cursorBottom := cursorTop + appItemHeight - 1

	if cursorTop < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorBottom - m.viewport.Height + 1)
	}
}

func (m *reviewModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	vpWidth := max(m.width-2, 20)
	vpHeight := max(m.height-4, 5)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.viewport.SetContent(renderApps(m.apps, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(fmt.Sprintf(" Applications (%d)", len(m.apps)))
	body := borderStyle.Width(m.viewport.Width).Render(m.viewport.View())

	statusText := " ↑/↓/j/k move  s/enter advance status  o open URL  q quit"
	if m.errText != "" {
		statusText = " " + errorStyle.Render(m.errText)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + body + "\n" + statusBar
}

func renderApps(apps []tracker.Application, cursor int) string {
	if len(apps) == 0 {
		return "  (no tracked applications yet — run a notify cycle first)"
	}

	var b strings.Builder
	for i, a := range apps {
		titleSt := appTitleStyle
		subtitleSt := appSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%s @ %s", a.Role, a.Company)))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%d/100 · %s · %s · ", a.Score, a.WorkMode, a.Duration)))
		b.WriteString(renderStatus(a.Status))
		b.WriteByte('\n')

		if i < len(apps)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
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

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the application review TUI over the given tracker.
func Run(tr *tracker.Tracker) error {
	apps, err := tr.List()
	if err != nil {
		return fmt.Errorf("loading applications: %w", err)
	}

	m := reviewModel{
		tracker: tr,
		apps:    apps,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running review tui: %w", err)
	}
	return nil
}
