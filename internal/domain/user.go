// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxMemberIDLen = 64

var (
	ErrMemberIDEmpty   = errors.New("member id empty")
	ErrMemberIDTooLong = errors.New("member id too long")
)

// User is the viewer of a party page. A nil *User is a guest.
type User = Member

// ParseMemberID trims and checks an id coming from a client.
func ParseMemberID(raw string) (MemberID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrMemberIDEmpty
	}
	if len(id) > MaxMemberIDLen {
		return "", ErrMemberIDTooLong
	}
	return MemberID(id), nil
}
