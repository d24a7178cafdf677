package ews

import (
	"context"

	"github.com/ace-ecosystem/phishfry/internal/logging"
)

// Action selects the remediation direction.
type Action string

const (
	// ActionDelete soft-deletes the message, moving it into
	// Recoverable Items.
	ActionDelete Action = "delete"

	// ActionRestore moves the message from Recoverable Items back
	// into the Inbox.
	ActionRestore Action = "restore"
)

// done is the past-tense outcome recorded on success.
func (a Action) done() string {
	return string(a) + "d"
}

// Remediate applies action to the message in this mailbox and,
// recursively, in every mailbox the message reached from here: members
// of distribution lists, owners behind group mailboxes, and recipients
// of forwards and replies.
//
// The traversal is sequential. Per-branch failures are recorded on
// that branch's result entry and suppressed so sibling branches
// continue; the returned set always covers every address visited.
func (m *Mailbox) Remediate(ctx context.Context, action Action, messageID string) *Results {
	results := NewResults()
	seen := map[string]bool{messageID: true}
	m.remediate(ctx, action, messageID, results, seen)
	return results
}

// Delete removes the message from every mailbox it was delivered to.
func (m *Mailbox) Delete(ctx context.Context, messageID string) *Results {
	return m.Remediate(ctx, ActionDelete, messageID)
}

// Restore brings the message back from soft-deletion in every mailbox
// it was delivered to.
func (m *Mailbox) Restore(ctx context.Context, messageID string) *Results {
	return m.Remediate(ctx, ActionRestore, messageID)
}

func (m *Mailbox) remediate(ctx context.Context, action Action, messageID string, results *Results, seen map[string]bool) {
	logger := logging.FromContext(ctx)

	// A group owner shares its entry with the group, so only
	// mailboxes discovered in their own right are gated here.
	if m.group == nil {
		if results.Has(m.DisplayAddress()) {
			return
		}
		results.Add(m.DisplayAddress(), string(m.Type))
	}
	res := results.Get(m.DisplayAddress())

	logger.Info("remediating",
		"action", string(action),
		"address", m.DisplayAddress(),
		"message_id", messageID)

	switch m.Type {
	case TypeGroupMailbox:
		owner, err := m.Owner(ctx)
		if err != nil {
			logger.Info("owner lookup failed", "address", m.Address, "error", err.Error())
			res.fail(failureMessage(err))
			return
		}
		if owner == nil {
			logger.Info("group has no impersonable owner", "address", m.Address)
			res.fail("Mailbox not found")
			return
		}
		res.Owner = owner.Address
		owner.remediate(ctx, action, messageID, results, seen)

	case TypePublicDL:
		members, err := m.Expand(ctx)
		if err != nil {
			logger.Info("expansion failed", "address", m.Address, "error", err.Error())
			res.fail(failureMessage(err))
			return
		}
		res.Members = make([]string, len(members))
		for i, member := range members {
			res.Members[i] = member.Address
		}
		for _, member := range members {
			member.remediate(ctx, action, messageID, results, seen)
		}

	case TypeMailbox:
		m.remediateMailbox(ctx, action, messageID, results, res, seen)

	default:
		// External address or contact; nothing to act on.
		logger.Info("mailbox not found", "address", m.Address)
		res.fail("Mailbox not found")
	}
}

// remediateMailbox handles the individual-mailbox branch: find the
// message copies, discover who they were forwarded to, apply the
// action, then recurse into the forward recipients.
func (m *Mailbox) remediateMailbox(ctx context.Context, action Action, messageID string, results *Results, res *Result, seen map[string]bool) {
	logger := logging.FromContext(ctx)

	var (
		folder *Folder
		err    error
	)
	if action == ActionDelete {
		folder, err = m.AllItems(ctx)
	} else {
		folder = m.RecoverableItems()
	}
	if err != nil {
		res.fail(failureMessage(err))
		return
	}

	messages, err := folder.Find(ctx, messageID)
	if err != nil {
		res.fail(failureMessage(err))
		return
	}
	if len(messages) == 0 {
		// A delete of a message that was never delivered is benign;
		// a restore is expected to find something.
		logger.Info("message not found", "address", m.Address, "message_id", messageID)
		res.Message = "Message not found"
		if action == ActionRestore {
			res.Success = false
		}
		return
	}

	forwards, err := m.findRecipients(ctx, messages, seen)
	if err != nil {
		res.fail(failureMessage(err))
		return
	}

	var op any
	operation := "DeleteItem"
	if action == ActionDelete {
		op = deleteItemRequest{
			DeleteType: "SoftDelete",
			ItemIDs:    itemRefs(messages),
		}
	} else {
		operation = "MoveItem"
		op = moveItemRequest{
			ToFolderID: m.Inbox().destinationRef(),
			ItemIDs:    itemRefs(messages),
		}
	}
	if _, err := m.session.send(ctx, operation, op, m.Address); err != nil {
		logger.Info("remediation failed", "address", m.Address, "error", err.Error())
		res.fail(failureMessage(err))
		m.session.collector.MailboxRemediated(string(action), false)
		return
	}
	res.Message = action.done()
	m.session.collector.MailboxRemediated(string(action), true)
	logger.Info("remediated", "action", string(action), "address", m.Address)

	if len(forwards) > 0 {
		res.Forwards = make([]string, len(forwards))
		for i, f := range forwards {
			res.Forwards[i] = f.Address
		}
	}
	for _, recipient := range forwards {
		recipient.remediate(ctx, action, messageID, results, seen)
	}
}

// findRecipients fetches the To/Cc/Bcc recipients of every found
// message whose own message id has not been investigated yet, in one
// GetItem call. Ids are marked seen before the request goes out, so a
// failed GetItem leaves them marked for the remainder of the run.
func (m *Mailbox) findRecipients(ctx context.Context, messages []*Message, seen map[string]bool) ([]*Mailbox, error) {
	logger := logging.FromContext(ctx)

	var pending []*Message
	for _, msg := range messages {
		if seen[msg.MessageID] {
			continue
		}
		seen[msg.MessageID] = true
		pending = append(pending, msg)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	req := getItemRequest{
		ItemShape: itemShape{
			BaseShape: "IdOnly",
			AdditionalProperties: &additionalProperties{
				FieldURIs: []fieldURI{
					{FieldURI: "message:ToRecipients"},
					{FieldURI: "message:CcRecipients"},
					{FieldURI: "message:BccRecipients"},
				},
			},
		},
		ItemIDs: itemRefs(pending),
	}
	data, err := m.session.send(ctx, "GetItem", req, m.Address)
	if err != nil {
		return nil, err
	}

	boxes, err := findAll[mailboxXML](data, typesNS, "Mailbox")
	if err != nil {
		return nil, err
	}
	var recipients []*Mailbox
	dedup := make(map[string]bool, len(boxes))
	for _, b := range boxes {
		if b.EmailAddress == "" || dedup[b.EmailAddress] {
			continue
		}
		dedup[b.EmailAddress] = true
		recipients = append(recipients, &Mailbox{
			session: m.session,
			Address: b.EmailAddress,
			Type:    MailboxType(b.MailboxType),
		})
	}
	if len(recipients) > 0 {
		addrs := make([]string, len(recipients))
		for i, r := range recipients {
			addrs[i] = r.Address
		}
		logger.Info("forwarded to", "address", m.Address, "recipients", addrs)
	}
	return recipients, nil
}
