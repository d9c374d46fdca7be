package core

import (
	"slices"
	"testing"
)

func TestRoomMembership(t *testing.T) {
	r := NewRoom("r1")

	if !r.Add("b", "bob") || !r.Add("a", "alice") {
		t.Fatalf("first Add should report a new member")
	}
	if r.Add("a", "alice2") {
		t.Fatalf("re-Add should not report a new member")
	}
	if got, want := r.Members(), []SessionID{"a", "b"}; !slices.Equal(got, want) {
		t.Fatalf("members=%v, want %v", got, want)
	}
	snap := r.MembersSnapshot()
	if snap[0].User != "alice2" {
		t.Fatalf("user label=%q, want %q", snap[0].User, "alice2")
	}

	if !r.Remove("a") || r.Remove("a") {
		t.Fatalf("Remove should succeed once")
	}
	if r.Has("a") || r.MemberCount() != 1 {
		t.Fatalf("unexpected state after remove: %v", r.Members())
	}
}
