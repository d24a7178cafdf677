package ews

// Message is an opaque item handle returned by FindItem, used verbatim
// in GetItem, DeleteItem and MoveItem.
type Message struct {
	mailbox *Mailbox

	// ID and ChangeKey identify the item on the server.
	ID        string
	ChangeKey string

	// MessageID is the item's own Internet message id, which differs
	// from the searched one for replies and forwarded copies.
	MessageID string
}

func (m *Message) ref() itemIDRef {
	return itemIDRef{ID: m.ID, ChangeKey: m.ChangeKey}
}

func itemRefs(messages []*Message) itemIDs {
	refs := make([]itemIDRef, len(messages))
	for i, m := range messages {
		refs[i] = m.ref()
	}
	return itemIDs{ItemIDs: refs}
}
