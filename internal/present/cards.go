package present

import (
	"fmt"
	"strconv"

	"github.com/dkeye/Eden/internal/domain"
)

const (
	DefaultWarningText1 = "You can see projects"
	DefaultWarningText2 = "Projects can't see you"
	WarningAction       = "Finish your profile"
	GuestPrompt         = "You must be logged in to edit your profile."
)

// CandidateCard shows a member with an optional match percentage.
type CandidateCard struct {
	Member     *domain.Member
	Percentage *float64
}

func (c CandidateCard) Name() string {
	if c.Member == nil {
		return ""
	}
	return c.Member.DiscordName
}

// Discriminator is "#1234", or empty when the member has none.
func (c CandidateCard) Discriminator() string {
	if c.Member == nil || c.Member.Discriminator == "" {
		return ""
	}
	return "#" + c.Member.Discriminator
}

func (c CandidateCard) RoleTitle() string {
	if c.Member == nil || c.Member.MemberRole == nil {
		return ""
	}
	return c.Member.MemberRole.Title
}

func (c CandidateCard) Avatar() string {
	if c.Member == nil {
		return ""
	}
	return c.Member.DiscordAvatar
}

// Match returns the percentage rounded to one decimal. A missing or zero
// percentage is not shown.
func (c CandidateCard) Match() (float64, bool) {
	if c.Percentage == nil || *c.Percentage == 0 {
		return 0, false
	}
	return Round(*c.Percentage, 1), true
}

// MemberCard is the party list entry of one member.
type MemberCard struct {
	CandidateCard
	Bio    string
	Skills []string
	Links  []domain.Link
	Nodes  []string
	Self   bool
}

func NewMemberCard(m *domain.Member, viewer *domain.User) MemberCard {
	card := MemberCard{CandidateCard: CandidateCard{Member: m}}
	if m == nil {
		return card
	}
	card.Bio = m.Bio
	card.Links = m.Links
	card.Self = viewer != nil && viewer.ID == m.ID
	for _, s := range m.Skills {
		if s.Info == nil {
			continue
		}
		if s.Level == "" {
			card.Skills = append(card.Skills, s.Info.Name)
			continue
		}
		card.Skills = append(card.Skills, fmt.Sprintf("%s (%s)", s.Info.Name, s.Level))
	}
	for _, n := range m.Nodes {
		if n.Data != nil && n.Data.Name != "" {
			card.Nodes = append(card.Nodes, n.Data.Name)
		}
	}
	return card
}

// MemberCards keeps the order of members.
func MemberCards(members []domain.Member, viewer *domain.User) []MemberCard {
	out := make([]MemberCard, 0, len(members))
	for i := range members {
		out = append(out, NewMemberCard(&members[i], viewer))
	}
	return out
}

// WarningCard nudges a member whose profile is not yet visible to projects.
type WarningCard struct {
	ProfilePercentage *float64
	Text1             string
	Text2             string
}

// NewWarningCard fills empty texts with the defaults.
func NewWarningCard(profilePercentage *float64, text1, text2 string) WarningCard {
	if text1 == "" {
		text1 = DefaultWarningText1
	}
	if text2 == "" {
		text2 = DefaultWarningText2
	}
	return WarningCard{ProfilePercentage: profilePercentage, Text1: text1, Text2: text2}
}

// Battery reports the profile completion to show. It is hidden when no percentage
// was given at all; a zero percentage is still shown.
func (w WarningCard) Battery() (float64, bool) {
	if w.ProfilePercentage == nil {
		return 0, false
	}
	return *w.ProfilePercentage, true
}

// ProjectMatchList lists project matches under a role heading.
type ProjectMatchList struct {
	Role    string
	Matches []*domain.ProjectMatch
}

func (l ProjectMatchList) Title() string {
	return "All projects for the role " + l.Role
}

// ProjectItem is one rendered entry of a ProjectMatchList.
type ProjectItem struct {
	Title   string
	Percent string
}

// Items skips empty entries.
func (l ProjectMatchList) Items() []ProjectItem {
	out := make([]ProjectItem, 0, len(l.Matches))
	for _, m := range l.Matches {
		if m == nil || m.Project == nil {
			continue
		}
		out = append(out, ProjectItem{
			Title:   m.Project.Title,
			Percent: strconv.FormatFloat(Round(m.Percentage, 1), 'f', -1, 64) + "%",
		})
	}
	return out
}
