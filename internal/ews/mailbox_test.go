package ews

import (
	"strings"
	"testing"
)

func TestDisplayAddress(t *testing.T) {
	group := &Mailbox{Address: "team@example.com", Type: TypeGroupMailbox}
	owner := &Mailbox{Address: "leader@example.com", Type: TypeMailbox, group: group}

	if got := group.DisplayAddress(); got != "team@example.com" {
		t.Errorf("group DisplayAddress() = %q, want team@example.com", got)
	}
	if got := owner.DisplayAddress(); got != "team@example.com" {
		t.Errorf("owner DisplayAddress() = %q, want team@example.com", got)
	}
}

func TestAllItemsFolderNotFound(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["test@example.com"] = mailboxEntry{"test@example.com", "Mailbox"}
	f.failCode["FindFolder"] = "ErrorAccessDenied"

	mb := resolveMailbox(t, f, "test@example.com")
	if _, err := mb.AllItems(testContext()); err == nil {
		t.Error("AllItems() succeeded, want error")
	}
}

func TestResolveAllMailbox(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["test@example.com"] = mailboxEntry{"test@example.com", "Mailbox"}

	mb := resolveMailbox(t, f, "test@example.com")
	resolved, err := mb.ResolveAll(testContext())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(resolved) != 1 || resolved[0] != mb {
		t.Errorf("ResolveAll() = %v, want the mailbox itself", resolved)
	}
}

func TestResolveAllExternal(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["ext@other.com"] = mailboxEntry{"ext@other.com", "Contact"}

	mb := resolveMailbox(t, f, "ext@other.com")
	resolved, err := mb.ResolveAll(testContext())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("ResolveAll() = %v, want empty", resolved)
	}
}

func TestResolveAllNestedListCycle(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["l1@example.com"] = mailboxEntry{"l1@example.com", "PublicDL"}
	f.expand["l1@example.com"] = []mailboxEntry{
		{"a@example.com", "Mailbox"},
		{"l2@example.com", "PublicDL"},
	}
	f.expand["l2@example.com"] = []mailboxEntry{
		{"b@example.com", "Mailbox"},
		{"l1@example.com", "PublicDL"},
	}

	mb := resolveMailbox(t, f, "l1@example.com")
	resolved, err := mb.ResolveAll(testContext())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	got := make([]string, len(resolved))
	for i, r := range resolved {
		got[i] = r.Address
	}
	want := "a@example.com b@example.com"
	if strings.Join(got, " ") != want {
		t.Errorf("ResolveAll() = %v, want [%s]", got, want)
	}
	// Each list expands once despite the cycle.
	if n := f.countOp("ExpandDL"); n != 2 {
		t.Errorf("ExpandDL issued %d times, want 2", n)
	}
}

func TestResolveAllGroupOwner(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["team@example.com"] = mailboxEntry{"team@example.com", "GroupMailbox"}
	f.expand["team@example.com"] = []mailboxEntry{
		{"other@example.com", "GroupMailbox"},
		{"leader@example.com", "Mailbox"},
	}

	mb := resolveMailbox(t, f, "team@example.com")
	resolved, err := mb.ResolveAll(testContext())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(resolved) != 1 || resolved[0].Address != "leader@example.com" {
		t.Fatalf("ResolveAll() = %v, want [leader@example.com]", resolved)
	}
	if resolved[0].DisplayAddress() != "team@example.com" {
		t.Errorf("owner DisplayAddress() = %q, want team@example.com", resolved[0].DisplayAddress())
	}
}

func TestExpandMembers(t *testing.T) {
	f := newFakeExchange(t)
	f.resolve["list@example.com"] = mailboxEntry{"list@example.com", "PublicDL"}
	f.expand["list@example.com"] = []mailboxEntry{
		{"a@example.com", "Mailbox"},
		{"b@example.com", "PublicDL"},
	}

	mb := resolveMailbox(t, f, "list@example.com")
	members, err := mb.Expand(testContext())
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expand() returned %d members, want 2", len(members))
	}
	if members[0].Address != "a@example.com" || members[0].Type != TypeMailbox {
		t.Errorf("members[0] = %+v", members[0])
	}
	if members[1].Address != "b@example.com" || members[1].Type != TypePublicDL {
		t.Errorf("members[1] = %+v", members[1])
	}
}
