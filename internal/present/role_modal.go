package present

import "github.com/dkeye/Eden/internal/domain"

const RoleModalTitle = "Please add description & detail of the role for people to have more context when they're invited to apply!"

var (
	HourChoices     = []string{"10", "20", "30", "40"}
	PeriodChoices   = []string{"week", "month"}
	PositionChoices = []string{"1", "2", "3", "4"}
)

// RoleModal lets a member pick one of the role templates and describe it. The
// selection lives only as long as the modal; text edits are written through the
// callbacks given at construction.
type RoleModal struct {
	Roles []domain.Role
	Open  bool

	Hours     string
	Period    string
	Positions string

	selected           domain.Role
	setDescription     func(string)
	setResponsibilities func(string)
}

func NewRoleModal(roles []domain.Role, setDescription, setResponsibilities func(string)) *RoleModal {
	return &RoleModal{
		Roles:              roles,
		setDescription:     setDescription,
		setResponsibilities: setResponsibilities,
	}
}

// Select marks the role with id as selected. Unknown ids leave the selection as is.
func (m *RoleModal) Select(id domain.RoleID) bool {
	for _, r := range m.Roles {
		if r.ID == id {
			m.selected = domain.Role{ID: r.ID, Title: r.Title}
			return true
		}
	}
	return false
}

// Selected returns the chosen role; false until one is chosen.
func (m *RoleModal) Selected() (domain.Role, bool) {
	return m.selected, m.selected.ID != ""
}

func (m *RoleModal) IsSelected(id domain.RoleID) bool {
	return m.selected.ID != "" && m.selected.ID == id
}

func (m *RoleModal) SetDescription(text string) {
	if m.setDescription != nil {
		m.setDescription(text)
	}
}

func (m *RoleModal) SetResponsibilities(text string) {
	if m.setResponsibilities != nil {
		m.setResponsibilities(text)
	}
}

// ChooseHours, ChoosePeriod and ChoosePositions accept only the listed choices.
func (m *RoleModal) ChooseHours(v string) bool { return choose(&m.Hours, HourChoices, v) }

func (m *RoleModal) ChoosePeriod(v string) bool { return choose(&m.Period, PeriodChoices, v) }

func (m *RoleModal) ChoosePositions(v string) bool {
	return choose(&m.Positions, PositionChoices, v)
}

func choose(dst *string, choices []string, v string) bool {
	for _, c := range choices {
		if c == v {
			*dst = v
			return true
		}
	}
	return false
}
