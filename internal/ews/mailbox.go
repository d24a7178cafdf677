package ews

import (
	"context"
	"fmt"

	"github.com/ace-ecosystem/phishfry/internal/logging"
)

// MailboxType classifies a resolved recipient. Anything outside the
// three known values is an external address or contact and cannot be
// remediated.
type MailboxType string

const (
	// TypeMailbox is an individual, impersonable mailbox.
	TypeMailbox MailboxType = "Mailbox"

	// TypePublicDL is a mail-enabled distribution list.
	TypePublicDL MailboxType = "PublicDL"

	// TypeGroupMailbox is a Microsoft 365 group's shared mailbox. It
	// is not directly impersonable and is remediated via its owner.
	TypeGroupMailbox MailboxType = "GroupMailbox"
)

// Mailbox is the resolved identity of a recipient, bound to the
// session that resolved it. Mailboxes are ephemeral; they are created
// per run and never cached.
type Mailbox struct {
	session *Session

	// Address is the primary SMTP address.
	Address string

	// Type is the mailbox classification as reported by the server.
	Type MailboxType

	// group points at the mailbox through which this one was
	// discovered, so that a group owner's results are keyed by the
	// group's address.
	group *Mailbox
}

// DisplayAddress is the address results are keyed by: the discovering
// group's address if there is one, the mailbox's own otherwise.
func (m *Mailbox) DisplayAddress() string {
	if m.group != nil {
		return m.group.Address
	}
	return m.Address
}

func (m *Mailbox) ref() mailboxRef {
	return mailboxRef{EmailAddress: m.Address}
}

// AllItems locates the hidden AllItems search folder, which holds
// every item the mailbox owns. Exchange exposes no distinguished id
// for it, so it is found by display name under the mailbox root.
func (m *Mailbox) AllItems(ctx context.Context) (*Folder, error) {
	ref := m.ref()
	req := findFolderRequest{
		Traversal:   "Shallow",
		FolderShape: folderShape{BaseShape: "IdOnly"},
		Restriction: IsEqualTo("folder:DisplayName", "AllItems"),
		ParentFolderIDs: parentFolderIDs{
			DistinguishedFolderID: &distinguishedFolderID{ID: "root", Mailbox: &ref},
		},
	}
	data, err := m.session.send(ctx, "FindFolder", req, m.Address)
	if err != nil {
		return nil, err
	}
	id, err := findFirst[folderIDXML](data, typesNS, "FolderId")
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("AllItems folder not found for %s", m.Address)
	}
	return &Folder{
		mailbox: m,
		id:      &folderIDRef{ID: id.ID, ChangeKey: id.ChangeKey},
	}, nil
}

// RecoverableItems is the hidden folder holding soft-deleted items.
func (m *Mailbox) RecoverableItems() *Folder {
	return &Folder{mailbox: m, distinguished: "recoverableitemsdeletions"}
}

// Inbox is the distinguished inbox folder, the restore target.
func (m *Mailbox) Inbox() *Folder {
	return &Folder{mailbox: m, distinguished: "inbox"}
}

// Expand lists the members of a distribution list. Members are bound
// to the same session and carry no group back-reference.
func (m *Mailbox) Expand(ctx context.Context) ([]*Mailbox, error) {
	logger := logging.FromContext(ctx)
	logger.Info("expanding distribution list", "address", m.Address)

	req := expandDLRequest{Mailbox: m.ref()}
	data, err := m.session.send(ctx, "ExpandDL", req, "")
	if err != nil {
		return nil, err
	}
	boxes, err := findAll[mailboxXML](data, typesNS, "Mailbox")
	if err != nil {
		return nil, err
	}
	members := make([]*Mailbox, 0, len(boxes))
	for _, b := range boxes {
		members = append(members, &Mailbox{
			session: m.session,
			Address: b.EmailAddress,
			Type:    MailboxType(b.MailboxType),
		})
	}
	addrs := make([]string, len(members))
	for i, mem := range members {
		addrs[i] = mem.Address
	}
	logger.Info("expanded distribution list", "address", m.Address, "members", addrs)
	return members, nil
}

// Owner returns the first individual mailbox among a group's members,
// with the group back-reference set, or nil when the group has none.
// Group mailboxes cannot be impersonated, so remediation is performed
// as the owner.
func (m *Mailbox) Owner(ctx context.Context) (*Mailbox, error) {
	logger := logging.FromContext(ctx)
	logger.Info("getting group owner", "address", m.Address)

	req := expandDLRequest{Mailbox: m.ref()}
	data, err := m.session.send(ctx, "ExpandDL", req, "")
	if err != nil {
		return nil, err
	}
	boxes, err := findAll[mailboxXML](data, typesNS, "Mailbox")
	if err != nil {
		return nil, err
	}
	for _, b := range boxes {
		if MailboxType(b.MailboxType) != TypeMailbox {
			continue
		}
		logger.Info("found group owner", "group", m.Address, "owner", b.EmailAddress)
		return &Mailbox{
			session: m.session,
			Address: b.EmailAddress,
			Type:    TypeMailbox,
			group:   m,
		}, nil
	}
	return nil, nil
}

// ResolveAll returns every individual mailbox this address ultimately
// delivers to, expanding distribution lists transitively and mapping
// group mailboxes to their owner. External addresses deliver to
// nothing.
func (m *Mailbox) ResolveAll(ctx context.Context) ([]*Mailbox, error) {
	return m.resolveAll(ctx, map[string]bool{})
}

func (m *Mailbox) resolveAll(ctx context.Context, expanded map[string]bool) ([]*Mailbox, error) {
	switch m.Type {
	case TypeMailbox:
		return []*Mailbox{m}, nil
	case TypePublicDL:
		if expanded[m.Address] {
			return nil, nil
		}
		expanded[m.Address] = true
		members, err := m.Expand(ctx)
		if err != nil {
			return nil, err
		}
		var out []*Mailbox
		for _, member := range members {
			resolved, err := member.resolveAll(ctx, expanded)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved...)
		}
		return out, nil
	case TypeGroupMailbox:
		if expanded[m.Address] {
			return nil, nil
		}
		expanded[m.Address] = true
		owner, err := m.Owner(ctx)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, nil
		}
		return []*Mailbox{owner}, nil
	default:
		return nil, nil
	}
}
