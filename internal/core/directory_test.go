package core

import "testing"

func newTestDirectory(t *testing.T, conns ...string) (*Directory, *Registry, *BuzzGate) {
	t.Helper()
	reg := NewRegistry()
	for _, id := range conns {
		if _, err := reg.Register(id); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	gate := NewBuzzGate()
	return NewDirectory(reg, gate, sequentialIDs(), nil), reg, gate
}

func TestDirectoryCreateAndJoin(t *testing.T) {
	dir, reg, _ := newTestDirectory(t, "h", "a")

	roomID := dir.CreateRoom("h", BuzzSingle)
	if roomID != "r1" {
		t.Fatalf("unexpected room id %q", roomID)
	}
	if h, _ := reg.Get("h"); !h.Host || h.Room != roomID {
		t.Fatalf("host back-reference not set: %+v", h)
	}

	if dir.Join("nope", "a") {
		t.Fatalf("join of unknown room should fail")
	}
	if !dir.Join(roomID, "a") || !dir.Join(roomID, "a") {
		t.Fatalf("join should succeed and be idempotent")
	}

	members := dir.MembersOf(roomID)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %+v", members)
	}
	if members[0].ID != "h" || !members[0].IsHost || members[1].ID != "a" || members[1].IsHost {
		t.Fatalf("unexpected snapshot %+v", members)
	}
	if got, ok := dir.RoomOf("a"); !ok || got != roomID {
		t.Fatalf("RoomOf(a) = %q, %v", got, ok)
	}
}

func TestDirectoryRegeneratesCollidingIDs(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.Register("h1")
	_, _ = reg.Register("h2")
	ids := []string{"aaa", "aaa", "bbb"}
	next := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	dir := NewDirectory(reg, NewBuzzGate(), next, nil)

	first := dir.CreateRoom("h1", BuzzSingle)
	second := dir.CreateRoom("h2", BuzzSingle)
	if first != "aaa" || second != "bbb" {
		t.Fatalf("expected aaa and bbb, got %q and %q", first, second)
	}
}

func TestDirectoryLeaveDeletesEmptyRoom(t *testing.T) {
	dir, reg, gate := newTestDirectory(t, "h", "a")
	roomID := dir.CreateRoom("h", BuzzSingle)
	dir.Join(roomID, "a")
	gate.TryBuzz(roomID, "a", BuzzSingle)

	if dir.Leave(roomID, "a") {
		t.Fatalf("room should survive while the host remains")
	}
	if gate.Buzzed(roomID, "a") {
		t.Fatalf("leave must clear the buzz record")
	}
	if a, _ := reg.Get("a"); a.Room != "" {
		t.Fatalf("back-reference not cleared: %+v", a)
	}

	if !dir.Leave(roomID, "h") {
		t.Fatalf("room should be deleted once empty")
	}
	if _, ok := dir.Get(roomID); ok {
		t.Fatalf("room still present")
	}
}

func TestDirectoryCloseRoomClearsMembers(t *testing.T) {
	dir, reg, gate := newTestDirectory(t, "h", "a", "b")
	roomID := dir.CreateRoom("h", BuzzSingle)
	dir.Join(roomID, "a")
	dir.Join(roomID, "b")
	gate.TryBuzz(roomID, "b", BuzzSingle)

	members := dir.CloseRoom(roomID)
	if len(members) != 3 {
		t.Fatalf("expected 3 former members, got %v", members)
	}
	for _, id := range members {
		p, ok := reg.Get(id)
		if !ok {
			t.Fatalf("identity %s deleted by close", id)
		}
		if p.Room != "" || p.Host {
			t.Fatalf("participant %s still affiliated: %+v", id, p)
		}
	}
	if gate.Buzzed(roomID, "b") {
		t.Fatalf("close must drop buzz records")
	}
	if dir.Join(roomID, "a") {
		t.Fatalf("closed room must not be joinable")
	}
	if dir.CloseRoom(roomID) != nil {
		t.Fatalf("closing twice should be a no-op")
	}
}

func TestDirectoryMembersOfReflectsRenames(t *testing.T) {
	dir, reg, _ := newTestDirectory(t, "h")
	roomID := dir.CreateRoom("h", BuzzMultiple)

	reg.Rename("h", "Host1")

	members := dir.MembersOf(roomID)
	if len(members) != 1 || members[0].Name != "Host1" {
		t.Fatalf("snapshot should use the current name: %+v", members)
	}
}
