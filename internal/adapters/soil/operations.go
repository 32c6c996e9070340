package soil

import (
	"context"
	"fmt"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

const memberFields = `
	_id
	discordAvatar
	discordName
	discriminator
	bio
	serverID
	skills {
		skillInfo {
			_id
			name
		}
		level
	}
	links {
		name
		url
	}
	memberRole {
		_id
		title
	}
	nodes {
		nodeData {
			_id
			name
			node
		}
	}
`

const (
	queryFindRoom = `query ($fields: findRoomInput!) {
	findRoom(fields: $fields) {
		_id
		members {
			_id
		}
	}
}`

	subRoomUpdated = `subscription ($fields: findRoomInput!) {
	roomUpdated(fields: $fields) {
		_id
		members {
			_id
		}
	}
}`

	queryFindMembers = `query ($fields: findMembersInput) {
	findMembers(fields: $fields) {` + memberFields + `}
}`

	subMemberUpdated = `subscription ($fields: findMembersInput) {
	memberUpdated(fields: $fields) {` + memberFields + `}
}`

	mutationEnterRoom = `mutation ($fields: enterRoomInput!) {
	enterRoom(fields: $fields) {
		_id
	}
}`

	mutationUpdateMember = `mutation ($fields: updateMemberInput!) {
	updateMember(fields: $fields) {` + memberFields + `}
}`

	queryFindRoleTemplates = `query ($fields: findRoleTemplatesInput) {
	findRoleTemplates(fields: $fields) {
		_id
		title
		description
	}
}`
)

func fields(v any) map[string]any {
	return map[string]any{"fields": v}
}

func (c *Client) FindRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var out struct {
		FindRoom *domain.Room `json:"findRoom"`
	}
	if err := c.do(ctx, queryFindRoom, fields(map[string]any{"_id": id}), &out); err != nil {
		return nil, fmt.Errorf("findRoom %s: %w", id, err)
	}
	if out.FindRoom == nil {
		return nil, fmt.Errorf("findRoom %s: %w", id, ErrNoData)
	}
	return out.FindRoom, nil
}

func (c *Client) FindMembers(ctx context.Context, ids []domain.MemberID) ([]domain.Member, error) {
	var out struct {
		FindMembers []*domain.Member `json:"findMembers"`
	}
	if err := c.do(ctx, queryFindMembers, fields(map[string]any{"_id": ids}), &out); err != nil {
		return nil, fmt.Errorf("findMembers: %w", err)
	}
	members := make([]domain.Member, 0, len(out.FindMembers))
	for _, m := range out.FindMembers {
		if m != nil {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (c *Client) FindRoleTemplates(ctx context.Context) ([]domain.Role, error) {
	var out struct {
		FindRoleTemplates []*domain.Role `json:"findRoleTemplates"`
	}
	if err := c.do(ctx, queryFindRoleTemplates, fields(map[string]any{}), &out); err != nil {
		return nil, fmt.Errorf("findRoleTemplates: %w", err)
	}
	roles := make([]domain.Role, 0, len(out.FindRoleTemplates))
	for _, r := range out.FindRoleTemplates {
		if r != nil {
			roles = append(roles, *r)
		}
	}
	return roles, nil
}

func (c *Client) EnterRoom(ctx context.Context, room domain.RoomID, member domain.MemberID) error {
	vars := fields(map[string]any{"roomID": room, "memberID": member})
	if err := c.do(ctx, mutationEnterRoom, vars, nil); err != nil {
		return fmt.Errorf("enterRoom %s: %w", room, err)
	}
	return nil
}

func (c *Client) UpdateMember(ctx context.Context, in core.UpdateMemberInput) (*domain.Member, error) {
	var out struct {
		UpdateMember *domain.Member `json:"updateMember"`
	}
	if err := c.do(ctx, mutationUpdateMember, fields(in), &out); err != nil {
		return nil, fmt.Errorf("updateMember %s: %w", in.ID, err)
	}
	return out.UpdateMember, nil
}

func (c *Client) RoomUpdated(ctx context.Context, id domain.RoomID) (core.Subscription[domain.Room], error) {
	s, err := subscribe[domain.Room](ctx, c, "roomUpdated", subRoomUpdated, fields(map[string]any{"_id": id}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) MemberUpdated(ctx context.Context, ids []domain.MemberID) (core.Subscription[domain.Member], error) {
	s, err := subscribe[domain.Member](ctx, c, "memberUpdated", subMemberUpdated, fields(map[string]any{"_id": ids}))
	if err != nil {
		return nil, err
	}
	return s, nil
}
