package core

import "github.com/dkeye/Eden/internal/domain"

// DeriveMemberIDs picks the source of truth for room membership.
// A pushed room always wins over the initial fetch, whatever the arrival order.
// ok is false while neither is known.
func DeriveMemberIDs(fetched, pushed *domain.Room) (ids []domain.MemberID, ok bool) {
	if pushed != nil {
		return pushed.MemberIDs(), true
	}
	if fetched != nil {
		return fetched.MemberIDs(), true
	}
	return nil, false
}

// ContainsMember reports whether id is in ids.
func ContainsMember(ids []domain.MemberID, id domain.MemberID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SameMemberSet compares two id lists as sets.
func SameMemberSet(a, b []domain.MemberID) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

func toSet(ids []domain.MemberID) map[domain.MemberID]struct{} {
	out := make(map[domain.MemberID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
