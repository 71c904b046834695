package identity

import "testing"

func TestRegularIdentity(t *testing.T) {
	admin := Regular("dan", true)
	member := Regular("alice", false)

	if !admin.IsAdmin() {
		t.Fatal("regular admin should be admin")
	}
	if member.IsAdmin() {
		t.Fatal("non-admin regular should not be admin")
	}
	if !member.CanUnclaim() {
		t.Fatal("regular users can unclaim")
	}
	if !member.CanAct("any-board") {
		t.Fatal("regular users act on every board")
	}
	if member.Key() != "alice" || member.Label() != "alice" {
		t.Fatalf("unexpected key/label: %q/%q", member.Key(), member.Label())
	}
}

func TestShareIdentity(t *testing.T) {
	visitor := Share("Uncle Rico", "superbowl")

	if visitor.IsAdmin() {
		t.Fatal("share identities can never be admin")
	}
	if visitor.CanUnclaim() {
		t.Fatal("share identities can never unclaim")
	}
	if !visitor.CanAct("superbowl") {
		t.Fatal("share identity should act on its own board")
	}
	if visitor.CanAct("other-board") {
		t.Fatal("share identity must not act on another board")
	}
	if visitor.Key() != "Uncle Rico" || visitor.Label() != "Uncle Rico" {
		t.Fatalf("unexpected key/label: %q/%q", visitor.Key(), visitor.Label())
	}
}

func TestZeroIdentity(t *testing.T) {
	var zero Identity

	if !zero.IsZero() {
		t.Fatal("zero identity should report IsZero")
	}
	if zero.CanAct("board") || zero.IsAdmin() || zero.CanUnclaim() {
		t.Fatal("zero identity has no capabilities")
	}
}

func TestShareIdentityAdminFlagIgnored(t *testing.T) {
	// Even a hand-built share identity with the flag set stays non-admin.
	forged := Identity{Kind: KindShare, DisplayName: "x", BoardID: "b", Admin: true}
	if forged.IsAdmin() {
		t.Fatal("share identity admin flag must be ignored")
	}
}
