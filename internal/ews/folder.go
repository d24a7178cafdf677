package ews

import "context"

// Folder is a server-side folder handle: either a well-known
// distinguished folder or an opaque id returned by a search. It is
// bound to its mailbox for impersonation routing.
type Folder struct {
	mailbox       *Mailbox
	distinguished string
	id            *folderIDRef
}

// parentRef renders the folder as a ParentFolderIds entry.
func (f *Folder) parentRef() parentFolderIDs {
	if f.distinguished != "" {
		ref := f.mailbox.ref()
		return parentFolderIDs{
			DistinguishedFolderID: &distinguishedFolderID{ID: f.distinguished, Mailbox: &ref},
		}
	}
	return parentFolderIDs{FolderID: f.id}
}

// destinationRef renders the folder as a MoveItem ToFolderId target.
func (f *Folder) destinationRef() toFolderID {
	ref := f.mailbox.ref()
	return toFolderID{
		DistinguishedFolderID: &distinguishedFolderID{ID: f.distinguished, Mailbox: &ref},
	}
}

// Find returns every message in this folder whose Internet message id
// equals messageID. The item shape also requests each item's own
// message id, which the forward traversal needs to tell the original
// message from replies and forwarded copies.
func (f *Folder) Find(ctx context.Context, messageID string) ([]*Message, error) {
	req := findItemRequest{
		Traversal: "Shallow",
		ItemShape: itemShape{
			BaseShape: "IdOnly",
			AdditionalProperties: &additionalProperties{
				FieldURIs: []fieldURI{{FieldURI: "message:InternetMessageId"}},
			},
		},
		Restriction:     IsEqualTo("message:InternetMessageId", messageID),
		ParentFolderIDs: f.parentRef(),
	}
	data, err := f.mailbox.session.send(ctx, "FindItem", req, f.mailbox.Address)
	if err != nil {
		return nil, err
	}

	ids, err := findAll[itemIDXML](data, typesNS, "ItemId")
	if err != nil {
		return nil, err
	}
	decoded, err := findAll[messageXML](data, typesNS, "Message")
	if err != nil {
		return nil, err
	}
	// Items that did not decode as messages (or omitted the field)
	// fall back to the searched id.
	messageIDs := make(map[string]string, len(decoded))
	for _, d := range decoded {
		if d.InternetMessageID != "" {
			messageIDs[d.ItemID.ID] = d.InternetMessageID
		}
	}

	messages := make([]*Message, 0, len(ids))
	for _, id := range ids {
		mid := messageIDs[id.ID]
		if mid == "" {
			mid = messageID
		}
		messages = append(messages, &Message{
			mailbox:   f.mailbox,
			ID:        id.ID,
			ChangeKey: id.ChangeKey,
			MessageID: mid,
		})
	}
	return messages, nil
}
