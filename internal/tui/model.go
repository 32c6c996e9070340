// Package tui is the terminal party client. It renders the live party view pushed by
// the server and edits the viewer's bio and role.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkeye/Eden/internal/adapters/signal"
	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/app/profile"
	"github.com/dkeye/Eden/internal/present"
)

type mode int

const (
	modeView mode = iota
	modeBio
	modeRoles
)

// connClosedMsg ends the program once the server side goes away.
type connClosedMsg struct{ err error }

// frameMsg carries one decoded server frame.
type frameMsg struct{ v any }

type Model struct {
	conn Conn
	snap party.Snapshot
	mode mode

	bio    textarea.Model
	roles  *present.RoleModal
	cursor int

	status   string
	err      error
	width    int
	quitting bool
}

func NewModel(conn Conn) *Model {
	ta := textarea.New()
	ta.Placeholder = "start typing here"
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	return &Model{conn: conn, bio: ta, width: 80}
}

func (m *Model) Init() tea.Cmd {
	return m.recv
}

func (m *Model) recv() tea.Msg {
	v, err := m.conn.Recv()
	if err != nil {
		return connClosedMsg{err: err}
	}
	return frameMsg{v: v}
}

func (m *Model) send(v any) tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Send(v); err != nil {
			return connClosedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bio.SetWidth(min(msg.Width-4, 72))
		return m, nil
	case connClosedMsg:
		if !m.quitting {
			m.err = msg.err
		}
		return m, tea.Quit
	case frameMsg:
		m.handleFrame(msg.v)
		return m, m.recv
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleFrame(v any) {
	switch f := v.(type) {
	case *signal.PartyStateMessage:
		m.snap = f.State
	case *signal.RolesMessage:
		m.roles = present.NewRoleModal(f.Roles, nil, nil)
		m.roles.Open = true
		if sel := m.snap.Viewer.RoleID(); sel != "" {
			m.roles.Select(sel)
		}
		m.cursor = 0
		m.mode = modeRoles
	case *signal.ProfileUpdatedMessage:
		m.status = "profile saved"
	case *signal.ErrorMessage:
		m.status = "error: " + f.Error
	}
}

func (m *Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	switch m.mode {
	case modeBio:
		return m.handleBioKey(k)
	case modeRoles:
		return m.handleRoleKey(k)
	}
	switch k.String() {
	case "q":
		return m, m.quit()
	case "b":
		if m.snap.Viewer == nil {
			m.status = present.GuestPrompt
			return m, nil
		}
		m.bio.SetValue(m.snap.Viewer.Bio)
		m.mode = modeBio
		return m, m.bio.Focus()
	case "r":
		if m.snap.Viewer == nil {
			m.status = present.GuestPrompt
			return m, nil
		}
		return m, m.send(map[string]string{"type": "roles"})
	}
	return m, nil
}

func (m *Model) handleBioKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		m.bio.Blur()
		m.mode = modeView
		return m, nil
	case tea.KeyEnter:
		value := m.bio.Value()
		m.bio.Blur()
		m.mode = modeView
		m.status = "saving bio"
		return m, m.send(signal.UpdateProfileRequest{Type: "update_profile", Field: profile.FieldBio, Value: value})
	}
	var cmd tea.Cmd
	m.bio, cmd = m.bio.Update(k)
	return m, cmd
}

func (m *Model) handleRoleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc":
		m.roles.Open = false
		m.mode = modeView
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.roles.Roles)-1 {
			m.cursor++
		}
	case " ":
		if m.cursor < len(m.roles.Roles) {
			m.roles.Select(m.roles.Roles[m.cursor].ID)
		}
	case "h":
		m.roles.ChooseHours(next(present.HourChoices, m.roles.Hours))
	case "p":
		m.roles.ChoosePeriod(next(present.PeriodChoices, m.roles.Period))
	case "o":
		m.roles.ChoosePositions(next(present.PositionChoices, m.roles.Positions))
	case "enter":
		sel, ok := m.roles.Selected()
		if !ok {
			m.status = "no role is selected"
			return m, nil
		}
		m.roles.Open = false
		m.mode = modeView
		m.status = "saving role"
		return m, m.send(signal.UpdateProfileRequest{Type: "update_profile", Field: profile.FieldRole, Value: string(sel.ID)})
	}
	return m, nil
}

func next(choices []string, cur string) string {
	for i, c := range choices {
		if c == cur {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return func() tea.Msg {
		_ = m.conn.Close()
		return tea.Quit()
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Party " + string(m.snap.RoomID)))
	b.WriteString("\n\n")

	switch {
	case m.snap.RoomMissing:
		b.WriteString(errorStyle.Render("This party does not exist."))
		b.WriteString("\n")
		if m.snap.MissingWhy != "" {
			b.WriteString(statusStyle.Render(m.snap.MissingWhy))
			b.WriteString("\n")
		}
	case !m.snap.Known:
		b.WriteString(statusStyle.Render("Loading members…"))
		b.WriteString("\n")
	}

	for _, card := range present.MemberCards(m.snap.Members, m.snap.Viewer) {
		b.WriteString(card.Render())
		b.WriteString("\n")
	}
	if m.snap.Viewer == nil {
		b.WriteString(present.NewWarningCard(nil, "", "").Render())
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(present.GuestPrompt))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeBio:
		b.WriteString("\nYour bio (enter saves, esc cancels)\n")
		b.WriteString(m.bio.View())
		b.WriteString("\n")
	case modeRoles:
		b.WriteString("\n")
		b.WriteString(m.roles.Render(m.cursor))
		b.WriteString("\n" + statusStyle.Render("space select · h/p/o availability · enter save · esc close") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	if m.mode == modeView {
		b.WriteString(statusStyle.Render("\nb bio · r role · q quit"))
	}
	return b.String()
}

// Err is the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}
