package present

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#5B8DEF")
	muted  = lipgloss.Color("#AAAAAA")
	green  = lipgloss.Color("#74FA6D")
	warn   = lipgloss.Color("#FF9C59")
	cross  = lipgloss.Color("#FF7E5C")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	selfCardStyle = cardStyle.BorderForeground(accent)
	nameStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(muted)
	roleStyle     = lipgloss.NewStyle().Foreground(accent)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	chosenStyle   = lipgloss.NewStyle().Bold(true).Foreground(green)
)

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func (c CandidateCard) header() string {
	line := nameStyle.Render(c.Name())
	if d := c.Discriminator(); d != "" {
		line += " " + dimStyle.Render(d)
	}
	if p, ok := c.Match(); ok {
		line += "  " + roleStyle.Render(formatPercent(p))
	}
	return line
}

func (c CandidateCard) Render() string {
	lines := []string{c.header()}
	if r := c.RoleTitle(); r != "" {
		lines = append(lines, roleStyle.Render(strings.ToUpper(r)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (c MemberCard) Render() string {
	lines := []string{c.header()}
	if r := c.RoleTitle(); r != "" {
		lines = append(lines, roleStyle.Render(strings.ToUpper(r)))
	}
	if c.Bio != "" {
		lines = append(lines, c.Bio)
	}
	if len(c.Skills) > 0 {
		lines = append(lines, dimStyle.Render("skills: ")+strings.Join(c.Skills, ", "))
	}
	if len(c.Nodes) > 0 {
		lines = append(lines, dimStyle.Render("nodes: ")+strings.Join(c.Nodes, ", "))
	}
	for _, l := range c.Links {
		lines = append(lines, dimStyle.Render(l.Name+": ")+l.URL)
	}
	style := cardStyle
	if c.Self {
		style = selfCardStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (w WarningCard) Render() string {
	lines := []string{lipgloss.NewStyle().Foreground(warn).Bold(true).Render("!")}
	if p, ok := w.Battery(); ok {
		lines = append(lines, dimStyle.Render("profile "+formatPercent(p)))
	}
	lines = append(lines,
		lipgloss.NewStyle().Foreground(green).Render("✓ ")+w.Text1,
		lipgloss.NewStyle().Foreground(cross).Render("✗ ")+w.Text2,
		roleStyle.Render("["+WarningAction+"]"),
	)
	return cardStyle.BorderForeground(warn).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (l ProjectMatchList) Render() string {
	lines := []string{headingStyle.Render(l.Title())}
	for _, it := range l.Items() {
		lines = append(lines, fmt.Sprintf("%s  %s", it.Title, dimStyle.Render(it.Percent)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Render draws the modal with the role at cursor highlighted.
func (m *RoleModal) Render(cursor int) string {
	roles := make([]string, 0, len(m.Roles))
	for i, r := range m.Roles {
		prefix := "  "
		if i == cursor {
			prefix = "> "
		}
		line := prefix + r.Title
		if m.IsSelected(r.ID) {
			line = chosenStyle.Render(line)
		}
		roles = append(roles, line)
	}
	detail := "No role is selected"
	if sel, ok := m.Selected(); ok {
		detail = nameStyle.Render(sel.Title)
	}
	choices := dimStyle.Render(fmt.Sprintf("availability %s h/%s  open positions %s",
		orDash(m.Hours), orDash(m.Period), orDash(m.Positions)))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, roles...),
		"   ",
		lipgloss.JoinVertical(lipgloss.Left, detail, choices),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(60).Render(RoleModalTitle), "", body))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
