package ews

import "encoding/xml"

// Request bodies for the seven EWS operations the remediation engine
// issues. Element names carry the m:/t: prefixes declared on the
// envelope root.

type resolveNamesRequest struct {
	XMLName               xml.Name `xml:"m:ResolveNames"`
	ReturnFullContactData string   `xml:"ReturnFullContactData,attr"`
	UnresolvedEntry       string   `xml:"m:UnresolvedEntry"`
}

type expandDLRequest struct {
	XMLName xml.Name   `xml:"m:ExpandDL"`
	Mailbox mailboxRef `xml:"m:Mailbox"`
}

// mailboxRef is an outgoing mailbox reference. The element name differs
// by context (m:Mailbox in ExpandDL, t:Mailbox inside folder ids), so
// it is supplied by the field tag at the point of use.
type mailboxRef struct {
	EmailAddress string `xml:"t:EmailAddress"`
}

type findFolderRequest struct {
	XMLName         xml.Name        `xml:"m:FindFolder"`
	Traversal       string          `xml:"Traversal,attr"`
	FolderShape     folderShape     `xml:"m:FolderShape"`
	Restriction     Restriction     `xml:"m:Restriction"`
	ParentFolderIDs parentFolderIDs `xml:"m:ParentFolderIds"`
}

type findItemRequest struct {
	XMLName         xml.Name        `xml:"m:FindItem"`
	Traversal       string          `xml:"Traversal,attr"`
	ItemShape       itemShape       `xml:"m:ItemShape"`
	Restriction     Restriction     `xml:"m:Restriction"`
	ParentFolderIDs parentFolderIDs `xml:"m:ParentFolderIds"`
}

type getItemRequest struct {
	XMLName   xml.Name  `xml:"m:GetItem"`
	ItemShape itemShape `xml:"m:ItemShape"`
	ItemIDs   itemIDs   `xml:"m:ItemIds"`
}

type deleteItemRequest struct {
	XMLName    xml.Name `xml:"m:DeleteItem"`
	DeleteType string   `xml:"DeleteType,attr"`
	ItemIDs    itemIDs  `xml:"m:ItemIds"`
}

type moveItemRequest struct {
	XMLName    xml.Name   `xml:"m:MoveItem"`
	ToFolderID toFolderID `xml:"m:ToFolderId"`
	ItemIDs    itemIDs    `xml:"m:ItemIds"`
}

type folderShape struct {
	BaseShape string `xml:"t:BaseShape"`
}

type itemShape struct {
	BaseShape            string                `xml:"t:BaseShape"`
	AdditionalProperties *additionalProperties `xml:"t:AdditionalProperties,omitempty"`
}

type additionalProperties struct {
	FieldURIs []fieldURI `xml:"t:FieldURI"`
}

type fieldURI struct {
	FieldURI string `xml:"FieldURI,attr"`
}

// parentFolderIDs holds exactly one of a distinguished folder id or an
// opaque folder id returned by a search.
type parentFolderIDs struct {
	DistinguishedFolderID *distinguishedFolderID `xml:"t:DistinguishedFolderId,omitempty"`
	FolderID              *folderIDRef           `xml:"t:FolderId,omitempty"`
}

// distinguishedFolderID addresses a well-known folder. The Mailbox
// child scopes it to the impersonated mailbox.
type distinguishedFolderID struct {
	ID      string      `xml:"Id,attr"`
	Mailbox *mailboxRef `xml:"t:Mailbox,omitempty"`
}

type folderIDRef struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr,omitempty"`
}

type toFolderID struct {
	DistinguishedFolderID *distinguishedFolderID `xml:"t:DistinguishedFolderId"`
}

type itemIDs struct {
	ItemIDs []itemIDRef `xml:"t:ItemId"`
}

type itemIDRef struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr,omitempty"`
}
