package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Eden/internal/domain"
)

func member(id, bio string) domain.Member {
	return domain.Member{ID: domain.MemberID(id), DiscordName: id, Bio: bio}
}

func ids(v ...string) []domain.MemberID {
	out := make([]domain.MemberID, 0, len(v))
	for _, s := range v {
		out = append(out, domain.MemberID(s))
	}
	return out
}

func TestMemberCacheReplaceKeepsOthers(t *testing.T) {
	c := NewMemberCache()
	c.Reset([]domain.Member{member("m1", "old"), member("m2", "two")}, ids("m1", "m2"))

	updated := domain.Member{ID: "m1", Bio: "new", Links: []domain.Link{{Name: "x", URL: "https://x"}}}
	require.True(t, c.Replace(updated))

	got, ok := c.Get("m1")
	require.True(t, ok)
	assert.Equal(t, updated, got, "matching entry is fully replaced")

	other, _ := c.Get("m2")
	assert.Equal(t, member("m2", "two"), other)
}

func TestMemberCacheReplaceDropsUnknown(t *testing.T) {
	c := NewMemberCache()
	c.Reset([]domain.Member{member("m1", "")}, ids("m1"))

	assert.False(t, c.Replace(member("m9", "ghost")))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("m9")
	assert.False(t, ok)
}

func TestMemberCacheResetFiltersToRoom(t *testing.T) {
	c := NewMemberCache()
	c.Reset([]domain.Member{member("m1", ""), member("stranger", "")}, ids("m1", "m2"))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("stranger")
	assert.False(t, ok)
}

func TestMemberCacheCompleteIsSetEquality(t *testing.T) {
	c := NewMemberCache()
	c.Reset([]domain.Member{member("m1", ""), member("m2", "")}, ids("m1", "m2"))

	assert.True(t, c.Complete(ids("m2", "m1")))
	assert.False(t, c.Complete(ids("m1", "m3")), "same size but different ids")
	assert.False(t, c.Complete(ids("m1")))
	assert.False(t, c.Complete(ids("m1", "m2", "m3")))
}

func TestMemberCacheRetainAndList(t *testing.T) {
	c := NewMemberCache()
	c.Reset([]domain.Member{member("m1", ""), member("m2", ""), member("m3", "")}, ids("m1", "m2", "m3"))

	assert.Equal(t, 1, c.Retain(ids("m3", "m1")))
	list := c.List(ids("m3", "m4", "m1"))
	require.Len(t, list, 2)
	assert.Equal(t, domain.MemberID("m3"), list[0].ID)
	assert.Equal(t, domain.MemberID("m1"), list[1].ID)
}
