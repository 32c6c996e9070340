package party

import "github.com/dkeye/Eden/internal/domain"

// event is anything the loop reacts to. Only the loop goroutine applies events.
type event interface{ isEvent() }

type roomFetched struct {
	room *domain.Room
	err  error
}

type roomPushed struct{ room domain.Room }

type streamEnded struct {
	stream string
	gen    uint64
	err    error
}

type memberPushed struct{ member domain.Member }

type membersFetched struct {
	ids     []domain.MemberID
	members []domain.Member
	err     error
}

type enrolled struct {
	member domain.MemberID
	err    error
}

type viewerChanged struct{ viewer *domain.User }

func (roomFetched) isEvent()    {}
func (roomPushed) isEvent()     {}
func (streamEnded) isEvent()    {}
func (memberPushed) isEvent()   {}
func (membersFetched) isEvent() {}
func (enrolled) isEvent()       {}
func (viewerChanged) isEvent()  {}
