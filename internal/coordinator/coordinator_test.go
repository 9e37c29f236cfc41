package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestJoin_FirstParticipantIsHost(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B")

	if err := joinAs(c, "r1", "A"); err != nil {
		t.Fatalf("join A: %v", err)
	}
	if err := joinAs(c, "r1", "B"); err != nil {
		t.Fatalf("join B: %v", err)
	}

	host, ok := c.Host("r1")
	if !ok || host != "A" {
		t.Fatalf("host = %q (ok=%v), want A", host, ok)
	}

	// A: room-users on its own join, user-joined for B.
	aUsers := conns["A"].ofType(TypeRoomUsers)
	if len(aUsers) != 1 {
		t.Fatalf("A room-users count = %d, want 1", len(aUsers))
	}
	aJoined := conns["A"].ofType(TypeUserJoined)
	if len(aJoined) != 1 {
		t.Fatalf("A user-joined count = %d, want 1", len(aJoined))
	}
	p := aJoined[0].Payload.(UserJoinedPayload)
	if p.ConnectionID != "B" || p.HostConnectionID != "A" {
		t.Fatalf("user-joined payload = %+v", p)
	}
	if got := connIDs(p.Participants); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("user-joined roster = %v", got)
	}

	// B: only the snapshot, never its own user-joined.
	if n := len(conns["B"].ofType(TypeUserJoined)); n != 0 {
		t.Fatalf("joiner received %d user-joined events", n)
	}
	bUsers := conns["B"].ofType(TypeRoomUsers)
	if len(bUsers) != 1 {
		t.Fatalf("B room-users count = %d, want 1", len(bUsers))
	}
	snap := bUsers[0].Payload.(RoomUsersPayload)
	if got := connIDs(snap.Participants); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("room-users roster = %v", got)
	}
	if !snap.Participants[0].IsHost || snap.Participants[1].IsHost {
		t.Fatalf("host flags wrong: %+v", snap.Participants)
	}
}

func TestJoin_Duplicate(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B")
	_ = joinAs(c, "r1", "A")
	_ = joinAs(c, "r1", "B")
	conns["A"].reset()
	conns["B"].reset()

	err := c.Join("r1", "B", Participant{Username: "again"})
	if !errors.Is(err, ErrDuplicateJoin) {
		t.Fatalf("expected ErrDuplicateJoin, got %v", err)
	}
	if len(conns["A"].messages()) != 0 || len(conns["B"].messages()) != 0 {
		t.Fatal("duplicate join must not emit events")
	}
	parts := c.Participants("r1")
	if len(parts) != 2 || parts[1].Username != "B" {
		t.Fatalf("membership changed: %+v", parts)
	}
}

func TestJoin_Validation(t *testing.T) {
	c := newTestCoordinator()
	connectAll(c, "A")

	if err := c.Join("", "A", Participant{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty room: expected ErrValidation, got %v", err)
	}
	err := c.Dispatch(context.Background(), "A", JoinRoom{RoomID: "r1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("missing username: expected ErrValidation, got %v", err)
	}
	if c.Stats().Rooms != 0 {
		t.Fatal("invalid join created a room")
	}
}

func TestScenario_HostDisconnects(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B", "C")
	for _, id := range []string{"A", "B", "C"} {
		if err := joinAs(c, "r1", id); err != nil {
			t.Fatal(err)
		}
	}
	for _, fc := range conns {
		fc.reset()
	}

	c.Disconnect("A")

	host, _ := c.Host("r1")
	if host != "B" {
		t.Fatalf("new host = %q, want B", host)
	}
	remaining := c.Participants("r1")
	if len(remaining) != 2 || remaining[0].ConnectionID != "B" || remaining[1].ConnectionID != "C" {
		t.Fatalf("roster = %+v", remaining)
	}

	for _, id := range []string{"B", "C"} {
		left := conns[id].ofType(TypeUserLeft)
		if len(left) != 1 {
			t.Fatalf("%s got %d user-left, want 1", id, len(left))
		}
		p := left[0].Payload.(UserLeftPayload)
		if p.UserID != "u-A" || p.ConnectionID != "A" {
			t.Fatalf("%s user-left payload = %+v", id, p)
		}
		if got := connIDs(p.Participants); !reflect.DeepEqual(got, []string{"B", "C"}) {
			t.Fatalf("%s user-left roster = %v", id, got)
		}
		if p.HostConnectionID != "B" {
			t.Fatalf("%s user-left host = %q", id, p.HostConnectionID)
		}
	}
	if n := len(conns["A"].messages()); n != 0 {
		t.Fatalf("departed connection received %d events", n)
	}
}

func TestScenario_LastParticipantLeaves(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "B", "D")
	_ = joinAs(c, "r1", "B")
	conns["B"].reset()

	c.Leave("r1", "B")

	if n := len(conns["B"].messages()); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
	if _, ok := c.Snapshot("r1"); ok {
		t.Fatal("room entry should be removed")
	}

	if err := joinAs(c, "r1", "D"); err != nil {
		t.Fatal(err)
	}
	host, ok := c.Host("r1")
	if !ok || host != "D" {
		t.Fatalf("fresh room host = %q, want D", host)
	}
}

func TestLeave_Idempotent(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B")
	_ = joinAs(c, "r1", "A")
	_ = joinAs(c, "r1", "B")

	c.Leave("r1", "B")
	conns["A"].reset()

	c.Leave("r1", "B")
	c.Disconnect("B")
	c.Leave("r1", "nobody")
	c.Leave("missing-room", "A")

	if n := len(conns["A"].messages()); n != 0 {
		t.Fatalf("repeat leave produced %d events", n)
	}
	if err := c.Dispatch(context.Background(), "B", LeaveRoom{RoomID: "r1"}); err != nil {
		t.Fatalf("leave-room for absent connection returned %v", err)
	}
	if got := len(c.Participants("r1")); got != 1 {
		t.Fatalf("participants = %d, want 1", got)
	}
}

func TestLeave_NonHostKeepsHost(t *testing.T) {
	c := newTestCoordinator()
	connectAll(c, "A", "B", "C")
	for _, id := range []string{"A", "B", "C"} {
		_ = joinAs(c, "r1", id)
	}
	c.Leave("r1", "B")
	if host, _ := c.Host("r1"); host != "A" {
		t.Fatalf("host = %q, want A", host)
	}
}

func TestHostHandoff_EarliestJoinTime(t *testing.T) {
	c := newTestCoordinator()
	connectAll(c, "A", "B", "C", "D")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Registry order A, B, C, D; join times deliberately not monotonic.
	_ = c.Join("r1", "A", Participant{Username: "A", JoinedAt: base})
	_ = c.Join("r1", "B", Participant{Username: "B", JoinedAt: base.Add(30 * time.Second)})
	_ = c.Join("r1", "C", Participant{Username: "C", JoinedAt: base.Add(10 * time.Second)})
	_ = c.Join("r1", "D", Participant{Username: "D", JoinedAt: base.Add(10 * time.Second)})

	c.Leave("r1", "A")
	if host, _ := c.Host("r1"); host != "C" {
		t.Fatalf("host = %q, want C (earliest join, first on tie)", host)
	}

	c.Leave("r1", "C")
	if host, _ := c.Host("r1"); host != "D" {
		t.Fatalf("host = %q, want D", host)
	}
}

func TestDisconnect_LeavesEveryRoom(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B", "C")
	_ = joinAs(c, "r1", "A")
	_ = joinAs(c, "r1", "B")
	_ = joinAs(c, "r2", "C")
	_ = joinAs(c, "r2", "A")
	conns["B"].reset()
	conns["C"].reset()

	c.Disconnect("A")

	if len(conns["B"].ofType(TypeUserLeft)) != 1 || len(conns["C"].ofType(TypeUserLeft)) != 1 {
		t.Fatal("every room of the closing connection should announce departure")
	}
	if host, _ := c.Host("r1"); host != "B" {
		t.Fatalf("r1 host = %q, want B", host)
	}
	if host, _ := c.Host("r2"); host != "C" {
		t.Fatalf("r2 host = %q, want C", host)
	}
	if st := c.Stats(); st.Connections != 2 || st.Rooms != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

// Participant count tracks joins minus departures for random sequences,
// and every active room has exactly one host that is a member.
func TestRandomLifecycle_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := newTestCoordinator()

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}
	connectAll(c, ids...)
	rooms := []string{"r1", "r2", "r3"}
	members := map[string]map[string]bool{}
	for _, r := range rooms {
		members[r] = map[string]bool{}
	}

	for step := 0; step < 2000; step++ {
		room := rooms[rng.Intn(len(rooms))]
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			err := joinAs(c, room, id)
			if members[room][id] {
				if !errors.Is(err, ErrDuplicateJoin) {
					t.Fatalf("step %d: expected duplicate join, got %v", step, err)
				}
			} else if err != nil {
				t.Fatalf("step %d: join: %v", step, err)
			}
			members[room][id] = true
		case 1:
			c.Leave(room, id)
			delete(members[room], id)
		case 2:
			c.Disconnect(id)
			for _, r := range rooms {
				delete(members[r], id)
			}
			c.Connect(newFakeConn(id))
		}

		for _, r := range rooms {
			parts := c.Participants(r)
			if len(parts) != len(members[r]) {
				t.Fatalf("step %d: %s count = %d, want %d", step, r, len(parts), len(members[r]))
			}
			snap, ok := c.Snapshot(r)
			if ok != (len(members[r]) > 0) {
				t.Fatalf("step %d: %s exists=%v with %d members", step, r, ok, len(members[r]))
			}
			if !ok {
				continue
			}
			hosts := 0
			for _, p := range snap.Participants {
				if p.IsHost {
					hosts++
				}
			}
			if hosts != 1 || !members[r][snap.HostConnectionID] {
				t.Fatalf("step %d: %s host=%q hosts=%d", step, r, snap.HostConnectionID, hosts)
			}
		}
	}
}

func TestConcurrentJoinLeave(t *testing.T) {
	c := newTestCoordinator()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			c.Connect(newFakeConn(id))
			_ = joinAs(c, "r1", id)
			_ = c.Dispatch(context.Background(), id, ChatMessage{RoomID: "r1", Message: "hi"})
			if i%2 == 0 {
				c.Disconnect(id)
			}
		}(i)
	}
	wg.Wait()

	parts := c.Participants("r1")
	if len(parts) != n/2 {
		t.Fatalf("participants = %d, want %d", len(parts), n/2)
	}
	snap, ok := c.Snapshot("r1")
	if !ok {
		t.Fatal("room should be active")
	}
	hosts := 0
	for _, p := range snap.Participants {
		if p.IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		t.Fatalf("hosts = %d, want 1", hosts)
	}
}

func TestClose_ClosesConnections(t *testing.T) {
	c := newTestCoordinator()
	conns := connectAll(c, "A", "B")
	c.Close()
	for id, fc := range conns {
		if !fc.closed {
			t.Fatalf("%s not closed", id)
		}
	}
}

func TestSnapshotAndStats(t *testing.T) {
	c := newTestCoordinator()
	connectAll(c, "A", "B", "C")

	if _, ok := c.Snapshot("r1"); ok {
		t.Fatal("snapshot of absent room should report false")
	}
	for _, id := range []string{"A", "B"} {
		if err := joinAs(c, "r1", id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if err := joinAs(c, "r2", "C"); err != nil {
		t.Fatalf("join C: %v", err)
	}
	if err := c.Dispatch(context.Background(), "B", CodeChange{RoomID: "r1", Code: "x := 1", Language: "go"}); err != nil {
		t.Fatalf("code-change: %v", err)
	}

	snap, ok := c.Snapshot("r1")
	if !ok {
		t.Fatal("snapshot of r1 missing")
	}
	if snap.HostConnectionID != "A" || !reflect.DeepEqual(connIDs(snap.Participants), []string{"A", "B"}) {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.State.Code == nil || snap.State.Code.Code != "x := 1" {
		t.Fatalf("snapshot state = %+v", snap.State)
	}

	// the snapshot is a copy
	snap.State.Code.Code = "mutated"
	again, _ := c.Snapshot("r1")
	if again.State.Code.Code != "x := 1" {
		t.Fatalf("snapshot aliases room state: %q", again.State.Code.Code)
	}

	if st := c.Stats(); st.Rooms != 2 || st.Connections != 3 {
		t.Fatalf("stats = %+v", st)
	}
	c.Disconnect("C")
	if st := c.Stats(); st.Rooms != 1 || st.Connections != 2 {
		t.Fatalf("stats after disconnect = %+v", st)
	}
}
