package domain

type (
	MemberID string
	SkillID  string
	RoleID   string
	NodeID   string
)

// Member is a participant profile as the soil service returns it.
// The party view only holds transient copies.
type Member struct {
	ID            MemberID      `json:"_id"`
	DiscordName   string        `json:"discordName,omitempty"`
	Discriminator string        `json:"discriminator,omitempty"`
	DiscordAvatar string        `json:"discordAvatar,omitempty"`
	Bio           string        `json:"bio,omitempty"`
	ServerID      []string      `json:"serverID,omitempty"`
	Skills        []MemberSkill `json:"skills,omitempty"`
	Links         []Link        `json:"links,omitempty"`
	MemberRole    *Role         `json:"memberRole,omitempty"`
	Nodes         []MemberNode  `json:"nodes,omitempty"`
}

type SkillInfo struct {
	ID   SkillID `json:"_id"`
	Name string  `json:"name,omitempty"`
}

// MemberSkill pairs a skill with the member's level in it.
type MemberSkill struct {
	Info  *SkillInfo `json:"skillInfo,omitempty"`
	Level string     `json:"level,omitempty"`
}

type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Role struct {
	ID          RoleID `json:"_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type NodeData struct {
	ID   NodeID `json:"_id"`
	Name string `json:"name,omitempty"`
	Node string `json:"node,omitempty"`
}

type MemberNode struct {
	Data *NodeData `json:"nodeData,omitempty"`
}

// RoleID returns the id of the assigned role, or "" when there is none.
func (m *Member) RoleID() RoleID {
	if m == nil || m.MemberRole == nil {
		return ""
	}
	return m.MemberRole.ID
}

// SkillLevels maps skill ids to levels. Skills without info are skipped.
func (m *Member) SkillLevels() map[SkillID]string {
	out := make(map[SkillID]string, len(m.Skills))
	for _, s := range m.Skills {
		if s.Info == nil {
			continue
		}
		out[s.Info.ID] = s.Level
	}
	return out
}
