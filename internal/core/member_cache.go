package core

import "github.com/dkeye/Eden/internal/domain"

// MemberCache is the view-local copy of enriched member records, keyed by id.
// It is not safe for concurrent use; the party loop owns it.
type MemberCache struct {
	byID map[domain.MemberID]domain.Member
}

func NewMemberCache() *MemberCache {
	return &MemberCache{byID: make(map[domain.MemberID]domain.Member)}
}

func (c *MemberCache) Len() int { return len(c.byID) }

func (c *MemberCache) Get(id domain.MemberID) (domain.Member, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Reset replaces the whole content with members whose id is in ids.
func (c *MemberCache) Reset(members []domain.Member, ids []domain.MemberID) {
	allowed := toSet(ids)
	next := make(map[domain.MemberID]domain.Member, len(members))
	for _, m := range members {
		if _, ok := allowed[m.ID]; !ok {
			continue
		}
		next[m.ID] = m
	}
	c.byID = next
}

// Replace swaps the entry with the same id for m. Other entries are untouched.
// Updates for ids not in the cache are dropped and reported as false.
func (c *MemberCache) Replace(m domain.Member) bool {
	if _, ok := c.byID[m.ID]; !ok {
		return false
	}
	c.byID[m.ID] = m
	return true
}

// Retain drops entries for members that are no longer in the room.
func (c *MemberCache) Retain(ids []domain.MemberID) int {
	allowed := toSet(ids)
	dropped := 0
	for id := range c.byID {
		if _, ok := allowed[id]; !ok {
			delete(c.byID, id)
			dropped++
		}
	}
	return dropped
}

// Complete reports whether the cached ids are exactly ids.
func (c *MemberCache) Complete(ids []domain.MemberID) bool {
	want := toSet(ids)
	if len(want) != len(c.byID) {
		return false
	}
	for id := range want {
		if _, ok := c.byID[id]; !ok {
			return false
		}
	}
	return true
}

// List returns cached members in the order of ids, skipping unknown ones.
func (c *MemberCache) List(ids []domain.MemberID) []domain.Member {
	out := make([]domain.Member, 0, len(c.byID))
	for _, id := range ids {
		if m, ok := c.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}
