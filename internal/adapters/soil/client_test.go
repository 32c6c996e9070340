package soil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Eden/internal/config"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

// fakeSoil answers HTTP operations with canned responses and speaks
// graphql-transport-ws on the same URL.
type fakeSoil struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	responses map[string]string
	requests  []gqlRequest

	received chan envelope
	outbound chan envelope
	conns    chan *websocket.Conn
}

func newFakeSoil(t *testing.T) *fakeSoil {
	f := &fakeSoil{
		t:         t,
		responses: make(map[string]string),
		received:  make(chan envelope, 16),
		outbound:  make(chan envelope, 16),
		conns:     make(chan *websocket.Conn, 1),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSoil) respond(field, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[field] = body
}

func (f *fakeSoil) lastRequest() gqlRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeSoil) client() *Client {
	url := f.srv.URL
	return New("soilservice", config.ServiceConfig{
		HTTPURL: url,
		WSURL:   "ws" + strings.TrimPrefix(url, "http"),
		Timeout: 2 * time.Second,
	})
}

func (f *fakeSoil) serve(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		f.serveWS(w, r)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	var req gqlRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	var body string
	for field, resp := range f.responses {
		if strings.Contains(req.Query, field+"(") {
			body = resp
		}
	}
	f.mu.Unlock()

	if body == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"unknown operation"}]}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *fakeSoil) serveWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{Subprotocols: []string{subprotocol}}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.conns <- conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env envelope
			if json.Unmarshal(data, &env) != nil {
				continue
			}
			if env.Type == typeInit {
				ack, _ := json.Marshal(envelope{Type: typeAck})
				_ = conn.WriteMessage(websocket.TextMessage, ack)
				continue
			}
			f.received <- env
		}
	}()
	for {
		select {
		case <-done:
			return
		case env := <-f.outbound:
			data, _ := json.Marshal(env)
			if conn.WriteMessage(websocket.TextMessage, data) != nil {
				return
			}
		}
	}
}

func (f *fakeSoil) awaitFrame(typ string) envelope {
	f.t.Helper()
	for {
		select {
		case env := <-f.received:
			if env.Type == typ {
				return env
			}
		case <-time.After(2 * time.Second):
			f.t.Fatalf("no %s frame received", typ)
		}
	}
}

func TestFindRoom(t *testing.T) {
	f := newFakeSoil(t)
	f.respond("findRoom", `{"data":{"findRoom":{"_id":"r1","members":[{"_id":"m1"},{"_id":"m2"}]}}}`)

	room, err := f.client().FindRoom(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("r1"), room.ID)
	assert.Equal(t, []domain.MemberID{"m1", "m2"}, room.MemberIDs())

	req := f.lastRequest()
	assert.Equal(t, map[string]any{"_id": "r1"}, req.Variables["fields"])
}

func TestFindRoomNullIsNoData(t *testing.T) {
	f := newFakeSoil(t)
	f.respond("findRoom", `{"data":{"findRoom":null}}`)

	_, err := f.client().FindRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestEnterRoomErrors(t *testing.T) {
	f := newFakeSoil(t)
	f.respond("enterRoom", `{"data":null,"errors":[{"message":"room not found","extensions":{"code":"NOT_FOUND"}}]}`)

	err := f.client().EnterRoom(context.Background(), "r1", "u1")
	require.Error(t, err)
	var gqlErrs Errors
	require.True(t, errors.As(err, &gqlErrs))
	assert.Equal(t, "NOT_FOUND", gqlErrs[0].Extensions.Code)

	req := f.lastRequest()
	assert.Equal(t, map[string]any{"roomID": "r1", "memberID": "u1"}, req.Variables["fields"])
}

func TestUnknownOperationStatus(t *testing.T) {
	f := newFakeSoil(t)
	_, err := f.client().FindRoleTemplates(context.Background())
	var gqlErrs Errors
	require.True(t, errors.As(err, &gqlErrs))
	assert.Equal(t, "unknown operation", gqlErrs[0].Message)
}

func TestFindMembersAndUpdateMember(t *testing.T) {
	f := newFakeSoil(t)
	f.respond("findMembers", `{"data":{"findMembers":[
		{"_id":"m1","discordName":"Ada","skills":[{"skillInfo":{"_id":"s1","name":"Go"},"level":"senior"}],
		 "memberRole":{"_id":"role1","title":"Builder"},"links":[{"name":"gh","url":"https://github.com/ada"}]},
		null]}}`)
	f.respond("updateMember", `{"data":{"updateMember":{"_id":"m1","bio":"hi"}}}`)

	c := f.client()
	members, err := c.FindMembers(context.Background(), []domain.MemberID{"m1", "m2"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].DiscordName)
	assert.Equal(t, domain.RoleID("role1"), members[0].RoleID())
	assert.Equal(t, map[domain.SkillID]string{"s1": "senior"}, members[0].SkillLevels())

	updated, err := c.UpdateMember(context.Background(), core.UpdateMemberInput{
		ID:     "m1",
		Skills: []core.SkillInput{{ID: "s1", Level: "senior"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", updated.Bio)

	sent := f.lastRequest().Variables["fields"].(map[string]any)
	assert.Nil(t, sent["bio"])
	assert.Contains(t, sent, "bio", "absent bio is sent as null")
	assert.Nil(t, sent["memberRole"])
}

func TestRoomUpdatedSubscription(t *testing.T) {
	f := newFakeSoil(t)
	c := f.client()
	defer c.Close()

	sub, err := c.RoomUpdated(context.Background(), "r1")
	require.NoError(t, err)

	start := f.awaitFrame(typeSub)
	var req gqlRequest
	require.NoError(t, json.Unmarshal(start.Payload, &req))
	assert.Contains(t, req.Query, "roomUpdated(")

	f.outbound <- envelope{
		ID:      start.ID,
		Type:    typeNext,
		Payload: json.RawMessage(`{"data":{"roomUpdated":{"_id":"r1","members":[{"_id":"m1"},{"_id":"m2"}]}}}`),
	}
	select {
	case room := <-sub.Events():
		assert.Equal(t, []domain.MemberID{"m1", "m2"}, room.MemberIDs())
	case <-time.After(2 * time.Second):
		t.Fatal("no room pushed")
	}

	sub.Close()
	done := f.awaitFrame(typeComplete)
	assert.Equal(t, start.ID, done.ID)
	_, open := <-sub.Events()
	assert.False(t, open)
	assert.NoError(t, sub.Err())
}

func TestSubscriptionErrorFrame(t *testing.T) {
	f := newFakeSoil(t)
	c := f.client()
	defer c.Close()

	sub, err := c.MemberUpdated(context.Background(), []domain.MemberID{"m1"})
	require.NoError(t, err)
	start := f.awaitFrame(typeSub)

	f.outbound <- envelope{ID: start.ID, Type: typeError, Payload: json.RawMessage(`[{"message":"forbidden"}]`)}
	for range sub.Events() {
	}
	var gqlErrs Errors
	require.True(t, errors.As(sub.Err(), &gqlErrs))
	assert.Equal(t, "forbidden", gqlErrs[0].Message)
}

func TestSubscriptionEndsOnContextCancel(t *testing.T) {
	f := newFakeSoil(t)
	c := f.client()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := c.MemberUpdated(ctx, []domain.MemberID{"m1"})
	require.NoError(t, err)
	start := f.awaitFrame(typeSub)

	cancel()
	done := f.awaitFrame(typeComplete)
	assert.Equal(t, start.ID, done.ID)
	for range sub.Events() {
	}
}

func TestConnectionLossEndsSubscriptions(t *testing.T) {
	f := newFakeSoil(t)
	c := f.client()
	defer c.Close()

	sub, err := c.RoomUpdated(context.Background(), "r1")
	require.NoError(t, err)
	f.awaitFrame(typeSub)

	conn := <-f.conns
	require.NoError(t, conn.Close())

	for range sub.Events() {
	}
	assert.Error(t, sub.Err())
}

func TestClosedClientRefusesSubscriptions(t *testing.T) {
	f := newFakeSoil(t)
	c := f.client()
	c.Close()

	_, err := c.RoomUpdated(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFullStreamKeepsNewestPayloads(t *testing.T) {
	s := newSubscription[domain.Room]("roomUpdated")
	delivered := make(chan struct{})
	go func() {
		for i := 0; i <= eventBuffer; i++ {
			s.deliver(json.RawMessage(fmt.Sprintf(`{"roomUpdated":{"_id":"r%d","members":[]}}`, i)))
		}
		close(delivered)
	}()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked on a stream nobody reads")
	}

	var got []domain.RoomID
	for len(got) < eventBuffer {
		got = append(got, (<-s.Events()).ID)
	}
	assert.Equal(t, domain.RoomID("r1"), got[0], "oldest payload is dropped")
	assert.Equal(t, domain.RoomID(fmt.Sprintf("r%d", eventBuffer)), got[eventBuffer-1])

	s.Close()
	_, open := <-s.Events()
	assert.False(t, open)
}
