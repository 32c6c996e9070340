package http

import (
	"embed"
	"html/template"
	"strings"

	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/present"
)

//go:embed templates/*.tmpl
var templates embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

type partyPage struct {
	RoomID      string
	Missing     bool
	MissingWhy  string
	Loading     bool
	Members     []present.MemberCard
	LoggedIn    bool
	IsMember    bool
	Bio         string
	GuestPrompt string
	Warning     present.WarningCard
}

func newPartyPage(snap party.Snapshot) partyPage {
	p := partyPage{
		RoomID:      string(snap.RoomID),
		Missing:     snap.RoomMissing,
		MissingWhy:  snap.MissingWhy,
		Loading:     !snap.Known,
		Members:     present.MemberCards(snap.Members, snap.Viewer),
		LoggedIn:    snap.Viewer != nil,
		IsMember:    snap.IsMember(),
		GuestPrompt: present.GuestPrompt,
		Warning:     present.NewWarningCard(nil, "", ""),
	}
	if snap.Viewer != nil {
		p.Bio = snap.Viewer.Bio
	}
	return p
}
