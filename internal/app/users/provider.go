// Package users resolves the logged-in member of a session to a profile record.
package users

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

const defaultCacheSize = 1024

var ErrUnknownMember = errors.New("unknown member")

// Provider is the app-wide current user context. Records are refreshed from
// pushed member updates, never from local edits.
type Provider struct {
	soil  core.SoilService
	cache *lru.Cache[domain.MemberID, domain.User]
	group singleflight.Group
}

func NewProvider(soil core.SoilService, size int) (*Provider, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[domain.MemberID, domain.User](size)
	if err != nil {
		return nil, fmt.Errorf("user cache: %w", err)
	}
	return &Provider{soil: soil, cache: cache}, nil
}

// Lookup returns the record of id, loading it on a miss. Concurrent misses
// for the same id share one request.
func (p *Provider) Lookup(ctx context.Context, id domain.MemberID) (*domain.User, error) {
	if u, ok := p.cache.Get(id); ok {
		return &u, nil
	}
	v, err, shared := p.group.Do(string(id), func() (any, error) {
		members, err := p.soil.FindMembers(ctx, []domain.MemberID{id})
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.ID == id {
				p.cache.Add(id, m)
				return m, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, id)
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("module", "app.users").Str("member", string(id)).Bool("shared", shared).Msg("loaded user")
	u := v.(domain.User)
	return &u, nil
}

// Observe refreshes a cached record from a pushed update. Unknown ids are ignored.
func (p *Provider) Observe(m domain.Member) {
	if p.cache.Contains(m.ID) {
		p.cache.Add(m.ID, m)
		log.Debug().Str("module", "app.users").Str("member", string(m.ID)).Msg("refreshed user")
	}
}

func (p *Provider) Forget(id domain.MemberID) {
	p.cache.Remove(id)
}
