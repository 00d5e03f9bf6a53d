package relay

import (
	"errors"
	"testing"
)

func TestCreateThenJoin(t *testing.T) {
	d := NewDirectory(2)

	res, err := d.CreateOrJoin("abc", "c1", true)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !res.Created {
		t.Error("first create should report Created")
	}
	if len(res.Members) != 0 {
		t.Errorf("expected no pre-existing members, got %v", res.Members)
	}

	res, err = d.CreateOrJoin("abc", "c2", false)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if res.Created {
		t.Error("second member should not report Created")
	}
	if len(res.Members) != 1 || res.Members[0] != "c1" {
		t.Errorf("joiner should see the original member, got %v", res.Members)
	}
}

func TestJoinUnknownRoomFails(t *testing.T) {
	d := NewDirectory(2)

	_, err := d.CreateOrJoin("nope", "c1", false)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	// The failed join must not have created the room.
	if rooms := d.Snapshot(); len(rooms) != 0 {
		t.Errorf("directory should be unchanged, got %v", rooms)
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	d := NewDirectory(2)

	if _, err := d.CreateOrJoin("abc", "c1", true); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	res, err := d.CreateOrJoin("abc", "c1", true)
	if err != nil {
		t.Fatalf("duplicate create should not fail: %v", err)
	}
	if !res.Created {
		t.Error("sole member re-creating should still report Created")
	}

	rooms := d.Snapshot()
	if len(rooms) != 1 || rooms[0].Members != 1 {
		t.Errorf("duplicate create must not duplicate membership: %v", rooms)
	}
}

func TestCapacityExceeded(t *testing.T) {
	d := NewDirectory(2)

	d.CreateOrJoin("abc", "c1", true)
	d.CreateOrJoin("abc", "c2", false)

	_, err := d.CreateOrJoin("abc", "c3", false)
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}

	// A lenient create against a full room is rejected too.
	_, err = d.CreateOrJoin("abc", "c3", true)
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull for create on full room, got %v", err)
	}

	if members := d.MembersExcept("abc", ""); len(members) != 2 {
		t.Errorf("failed join must not mutate membership, got %v", members)
	}
}

func TestMembersExcept(t *testing.T) {
	d := NewDirectory(3)

	d.CreateOrJoin("abc", "c1", true)
	d.CreateOrJoin("abc", "c2", false)
	d.CreateOrJoin("abc", "c3", false)

	members := d.MembersExcept("abc", "c2")
	if len(members) != 2 || members[0] != "c1" || members[1] != "c3" {
		t.Errorf("expected [c1 c3] in join order, got %v", members)
	}

	if members := d.MembersExcept("missing", "c1"); len(members) != 0 {
		t.Errorf("missing room should yield empty set, got %v", members)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	d := NewDirectory(2)

	d.CreateOrJoin("abc", "c1", true)
	d.CreateOrJoin("abc", "c2", false)

	remaining, changed := d.Leave("abc", "c1")
	if len(remaining) != 1 || remaining[0] != "c2" {
		t.Errorf("expected [c2] remaining, got %v", remaining)
	}
	if !changed {
		t.Error("leave of a member should report a membership change")
	}

	remaining, changed = d.Leave("abc", "c2")
	if remaining != nil {
		t.Errorf("last leave should leave nobody, got %v", remaining)
	}
	if !changed {
		t.Error("emptying leave still changed membership")
	}
	if rooms := d.Snapshot(); len(rooms) != 0 {
		t.Errorf("empty room should be deleted, got %v", rooms)
	}

	// The id behaves as if it were never used.
	if _, err := d.CreateOrJoin("abc", "c3", false); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("join after room deletion should fail, got %v", err)
	}

	// Leave is idempotent.
	if remaining, changed := d.Leave("abc", "c1"); remaining != nil || changed {
		t.Errorf("leave on deleted room should be a silent no-op, got %v changed=%v", remaining, changed)
	}
}

func TestLeaveByNonMember(t *testing.T) {
	d := NewDirectory(2)

	d.CreateOrJoin("abc", "c1", true)
	d.CreateOrJoin("abc", "c2", false)

	remaining, changed := d.Leave("abc", "stranger")
	if changed {
		t.Error("leave by a non-member must not report a change")
	}
	if remaining != nil {
		t.Errorf("non-member leave should return no members, got %v", remaining)
	}

	if members := d.MembersExcept("abc", ""); len(members) != 2 {
		t.Errorf("room membership must be untouched, got %v", members)
	}
}

func TestDuplicateJoinReportsNoChange(t *testing.T) {
	d := NewDirectory(2)

	d.CreateOrJoin("abc", "c1", true)
	if res, _ := d.CreateOrJoin("abc", "c2", false); !res.Changed {
		t.Error("first join should report a membership change")
	}

	res, err := d.CreateOrJoin("abc", "c2", false)
	if err != nil {
		t.Fatalf("duplicate join should not fail: %v", err)
	}
	if res.Changed {
		t.Error("duplicate join must not report a membership change")
	}
	if len(res.Members) != 1 || res.Members[0] != "c1" {
		t.Errorf("duplicate join should still see the peer, got %v", res.Members)
	}
}

func TestLeaveAll(t *testing.T) {
	d := NewDirectory(2)

	d.CreateOrJoin("r1", "c1", true)
	d.CreateOrJoin("r1", "c2", false)
	d.CreateOrJoin("r2", "c1", true)

	left := d.LeaveAll("c1")
	if len(left) != 2 {
		t.Fatalf("expected two affected rooms, got %v", left)
	}
	if remaining := left["r1"]; len(remaining) != 1 || remaining[0] != "c2" {
		t.Errorf("r1 should keep c2, got %v", remaining)
	}
	if remaining := left["r2"]; remaining != nil {
		t.Errorf("r2 should be empty, got %v", remaining)
	}

	rooms := d.Snapshot()
	if len(rooms) != 1 || rooms[0].ID != "r1" {
		t.Errorf("only r1 should survive, got %v", rooms)
	}

	if left := d.LeaveAll("c1"); left != nil {
		t.Errorf("second LeaveAll should be a no-op, got %v", left)
	}
}

func TestDefaultCapacity(t *testing.T) {
	d := NewDirectory(0)

	d.CreateOrJoin("abc", "c1", true)
	d.CreateOrJoin("abc", "c2", false)

	if _, err := d.CreateOrJoin("abc", "c3", false); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("default capacity should be two players, got %v", err)
	}
}
