package orch

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/core/mocks"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/goccy/go-json"
	"go.uber.org/mock/gomock"
)

type received struct {
	Event string `json:"event"`
	Args  []any  `json:"args"`
}

type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *recordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {}

func (c *recordingConn) events(t *testing.T) []received {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]received, 0, len(c.frames))
	for _, f := range c.frames {
		var ev received
		if err := json.Unmarshal(f, &ev); err != nil {
			t.Fatalf("unmarshal %s: %v", f, err)
		}
		out = append(out, ev)
	}
	return out
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

func newTestOrchestrator() *Orchestrator {
	return New(app.NewRegistry(), app.NewRoomManager(), app.DropPolicy{})
}

func connect(o *Orchestrator) (core.SessionID, *recordingConn) {
	c := &recordingConn{}
	return o.OnConnect(c, nil), c
}

func inbound(t *testing.T, name string, args ...any) core.InboundEvent {
	t.Helper()
	b, err := json.Marshal(map[string]any{"event": name, "args": args})
	if err != nil {
		t.Fatal(err)
	}
	ev, err := core.DecodeEvent(b)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func members(o *Orchestrator, room domain.RoomID) map[core.SessionID]bool {
	out := map[core.SessionID]bool{}
	for _, sid := range o.Rooms.MembersOf(room) {
		out[sid] = true
	}
	return out
}

func TestJoinRoomNotifiesOthers(t *testing.T) {
	o := newTestOrchestrator()
	a, ca := connect(o)
	b, cb := connect(o)

	if err := o.JoinRoom(a, "r1", "alice"); err != nil {
		t.Fatal(err)
	}
	if got := ca.events(t); len(got) != 0 {
		t.Fatalf("first member got %v, want nothing", got)
	}
	if err := o.JoinRoom(b, "r1", "bob"); err != nil {
		t.Fatal(err)
	}

	want := []received{{Event: "user-connected", Args: []any{"bob"}}}
	if got := ca.events(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("alice got %v, want %v", got, want)
	}
	if got := cb.events(t); len(got) != 0 {
		t.Fatalf("sender got %v, want nothing", got)
	}
}

func TestToggleVideoBetweenMembers(t *testing.T) {
	o := newTestOrchestrator()
	a, ca := connect(o)
	b, cb := connect(o)
	_ = o.JoinRoom(a, "r1", "alice")
	_ = o.JoinRoom(b, "r1", "bob")
	ca.reset()
	cb.reset()

	if err := o.ToggleVideo(a, "r1", "alice"); err != nil {
		t.Fatal(err)
	}

	want := []received{{Event: "toggle-video", Args: []any{"alice"}}}
	if got := cb.events(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("bob got %v, want %v", got, want)
	}
	if got := ca.events(t); len(got) != 0 {
		t.Fatalf("alice got %v, want nothing", got)
	}
	if got, want := members(o, "r1"), map[core.SessionID]bool{a: true, b: true}; !reflect.DeepEqual(got, want) {
		t.Fatalf("members=%v, want %v", got, want)
	}
}

func TestToggleJoinsImplicitly(t *testing.T) {
	for _, name := range []string{core.EventToggleAudio, core.EventToggleVideo} {
		t.Run(name, func(t *testing.T) {
			o := newTestOrchestrator()
			a, ca := connect(o)
			b, cb := connect(o)
			_ = o.JoinRoom(a, "r1", "alice")
			ca.reset()

			if err := o.Dispatch(b, inbound(t, name, "r1", "bob")); err != nil {
				t.Fatal(err)
			}
			if !members(o, "r1")[b] {
				t.Fatalf("toggle did not join sender")
			}
			want := []received{{Event: name, Args: []any{"bob"}}}
			if got := ca.events(t); !reflect.DeepEqual(got, want) {
				t.Fatalf("alice got %v, want %v", got, want)
			}

			// Repeating does not duplicate membership.
			_ = o.Dispatch(b, inbound(t, name, "r1", "bob"))
			if n := len(o.Rooms.MembersOf("r1")); n != 2 {
				t.Fatalf("members=%d, want 2", n)
			}
			if got := cb.events(t); len(got) != 0 {
				t.Fatalf("sender got %v, want nothing", got)
			}
		})
	}
}

func TestLeaveBroadcastsDisconnect(t *testing.T) {
	o := newTestOrchestrator()
	a, ca := connect(o)
	b, cb := connect(o)
	_ = o.JoinRoom(a, "r1", "alice")
	_ = o.JoinRoom(b, "r1", "bob")
	ca.reset()

	if err := o.Leave(a, "r1", "alice"); err != nil {
		t.Fatal(err)
	}

	want := []received{{Event: "user-disconnected", Args: []any{"alice"}}}
	if got := cb.events(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("bob got %v, want %v", got, want)
	}
	if got := ca.events(t); len(got) != 0 {
		t.Fatalf("alice got %v, want nothing", got)
	}
	if members(o, "r1")[a] {
		t.Fatalf("alice still a member")
	}
}

func TestLeaveWhenNotMember(t *testing.T) {
	o := newTestOrchestrator()
	a, _ := connect(o)
	b, cb := connect(o)
	_ = o.JoinRoom(b, "r1", "bob")

	if err := o.Leave(a, "r1", "alice"); err != nil {
		t.Fatal(err)
	}
	want := []received{{Event: "user-disconnected", Args: []any{"alice"}}}
	if got := cb.events(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("bob got %v, want %v", got, want)
	}
}

func TestDisconnectIsSilent(t *testing.T) {
	o := newTestOrchestrator()
	a, _ := connect(o)
	b, cb := connect(o)
	_ = o.JoinRoom(a, "r1", "alice")
	_ = o.JoinRoom(a, "r2", "alice")
	_ = o.JoinRoom(b, "r1", "bob")
	cb.reset()

	o.OnDisconnect(a)
	o.OnDisconnect(a)

	if members(o, "r1")[a] {
		t.Fatalf("r1 still has disconnected member")
	}
	if rooms := o.Rooms.RoomsOf(a); len(rooms) != 0 {
		t.Fatalf("rooms of disconnected=%v, want none", rooms)
	}
	if got := cb.events(t); len(got) != 0 {
		t.Fatalf("bob got %v, want nothing", got)
	}
	if _, ok := o.Registry.Lookup(a); ok {
		t.Fatalf("disconnected connection still registered")
	}
}

func TestRejectedEvents(t *testing.T) {
	cases := []struct {
		event string
		args  []any
		msg   string
	}{
		{core.EventJoinRoom, []any{"", "carol"}, "Failed to join room"},
		{core.EventJoinRoom, []any{"r1"}, "Failed to join room"},
		{core.EventToggleAudio, []any{nil, "carol"}, "Failed to toggle audio"},
		{core.EventToggleVideo, []any{"r1", false}, "Failed to toggle video"},
		{core.EventLeave, []any{}, "Failed to leave room"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			o := newTestOrchestrator()
			a, ca := connect(o)
			c, cc := connect(o)
			_ = o.JoinRoom(a, "r1", "alice")
			ca.reset()

			err := o.Dispatch(c, inbound(t, tc.event, tc.args...))
			if !errors.Is(err, domain.ErrMissingRoomID) && !errors.Is(err, domain.ErrMissingUserID) {
				t.Fatalf("err=%v, want missing id", err)
			}
			want := []received{{Event: "error", Args: []any{map[string]any{"message": tc.msg}}}}
			if got := cc.events(t); !reflect.DeepEqual(got, want) {
				t.Fatalf("sender got %v, want %v", got, want)
			}
			if got := ca.events(t); len(got) != 0 {
				t.Fatalf("member got %v, want nothing", got)
			}
			if got, want := members(o, "r1"), map[core.SessionID]bool{a: true}; !reflect.DeepEqual(got, want) {
				t.Fatalf("members=%v, want %v", got, want)
			}
			if rooms := o.Rooms.RoomsOf(c); len(rooms) != 0 {
				t.Fatalf("rejected sender in rooms %v", rooms)
			}
		})
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	o := newTestOrchestrator()
	a, ca := connect(o)
	err := o.Dispatch(a, inbound(t, "chat", "r1", "alice"))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err=%v, want ErrUnknownEvent", err)
	}
	if got := ca.events(t); len(got) != 0 {
		t.Fatalf("got %v, want nothing", got)
	}
}

func TestDispatchUnknownSession(t *testing.T) {
	o := newTestOrchestrator()
	err := o.Dispatch("ghost", inbound(t, core.EventJoinRoom, "r1", "x"))
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("err=%v, want ErrUnknownSession", err)
	}
	if n := len(o.Rooms.MembersOf("r1")); n != 0 {
		t.Fatalf("members=%d, want 0", n)
	}
}

func TestBackpressureKick(t *testing.T) {
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockSignalConnection(ctrl)
	slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure)

	o := New(app.NewRegistry(), app.NewRoomManager(), app.KickPolicy{})
	kicked := false
	b := o.OnConnect(slow, func() { kicked = true })
	a, _ := connect(o)
	_ = o.JoinRoom(b, "r1", "bob")

	if err := o.JoinRoom(a, "r1", "alice"); err != nil {
		t.Fatal(err)
	}
	if !kicked {
		t.Fatalf("slow member was not kicked")
	}
}

func TestBackpressureDrop(t *testing.T) {
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockSignalConnection(ctrl)
	slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure).Times(2)

	o := newTestOrchestrator()
	kicked := false
	b := o.OnConnect(slow, func() { kicked = true })
	a, _ := connect(o)
	_ = o.JoinRoom(b, "r1", "bob")
	_ = o.JoinRoom(a, "r1", "alice")
	_ = o.ToggleAudio(a, "r1", "alice")

	if kicked {
		t.Fatalf("drop policy kicked member")
	}
	if !members(o, "r1")[b] {
		t.Fatalf("slow member lost membership")
	}
}

func TestConcurrentEvents(t *testing.T) {
	o := newTestOrchestrator()
	const n = 16
	sids := make([]core.SessionID, n)
	for i := range sids {
		sids[i], _ = connect(o)
	}
	var wg sync.WaitGroup
	for _, sid := range sids {
		wg.Add(1)
		go func(sid core.SessionID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = o.JoinRoom(sid, "r1", "u")
				_ = o.ToggleAudio(sid, "r2", "u")
				_ = o.Leave(sid, "r1", "u")
			}
		}(sid)
	}
	wg.Wait()

	if got := len(o.Rooms.MembersOf("r1")); got != 0 {
		t.Fatalf("r1 members=%d, want 0", got)
	}
	if got := len(o.Rooms.MembersOf("r2")); got != n {
		t.Fatalf("r2 members=%d, want %d", got, n)
	}
}
