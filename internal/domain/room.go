package domain

type RoomID string

// MemberRef is the minimal member stub a room carries.
type MemberRef struct {
	ID MemberID `json:"_id"`
}

type Room struct {
	ID      RoomID      `json:"_id"`
	Members []MemberRef `json:"members"`
}

// MemberIDs returns the ids of the room members in server order.
func (r *Room) MemberIDs() []MemberID {
	if r == nil {
		return nil
	}
	out := make([]MemberID, 0, len(r.Members))
	for _, m := range r.Members {
		out = append(out, m.ID)
	}
	return out
}

// Project and ProjectMatch are consumed from the matching backend as opaque results.
type Project struct {
	ID          string `json:"_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type ProjectMatch struct {
	Project    *Project `json:"projectData,omitempty"`
	Percentage float64  `json:"matchPercentage"`
}
