package ews

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/ace-ecosystem/phishfry/internal/metrics"
)

// fakeExchange is a scripted EWS endpoint. Behavior is keyed by the
// impersonated address (X-AnchorMailbox) and by the addresses and item
// ids appearing in request bodies.
type fakeExchange struct {
	t *testing.T

	// scripted state
	resolve     map[string]mailboxEntry   // address -> resolution
	expand      map[string][]mailboxEntry // list/group address -> members
	allItems    map[string][]fakeItem     // mailbox address -> items
	recoverable map[string][]fakeItem     // mailbox address -> soft-deleted items
	recipients  map[string][]mailboxEntry // item id -> To/Cc/Bcc mailboxes

	// injected failures, keyed by operation name
	failCode   map[string]string // respond with this ResponseCode
	failStatus map[string]int    // respond with this HTTP status

	// recorded activity
	operations []string
	getItemIDs [][]string
	deleted    map[string][]string // address -> item ids
	moved      map[string][]string

	server *httptest.Server
}

type mailboxEntry struct {
	address     string
	mailboxType string
}

type fakeItem struct {
	id        string
	messageID string
}

func newFakeExchange(t *testing.T) *fakeExchange {
	f := &fakeExchange{
		t:           t,
		resolve:     make(map[string]mailboxEntry),
		expand:      make(map[string][]mailboxEntry),
		allItems:    make(map[string][]fakeItem),
		recoverable: make(map[string][]fakeItem),
		recipients:  make(map[string][]mailboxEntry),
		failCode:    make(map[string]string),
		failStatus:  make(map[string]int),
		deleted:     make(map[string][]string),
		moved:       make(map[string][]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// session returns a session pointed at this fake endpoint.
func (f *fakeExchange) session() *Session {
	return &Session{
		user:      "admin@example.com",
		pass:      "secret",
		url:       f.server.URL,
		version:   "Exchange2016",
		timezone:  "UTC",
		client:    f.server.Client(),
		collector: &metrics.NoopCollector{},
	}
}

func (f *fakeExchange) countOp(name string) int {
	n := 0
	for _, op := range f.operations {
		if op == name {
			n++
		}
	}
	return n
}

var (
	unresolvedEntryRe = regexp.MustCompile(`<m:UnresolvedEntry>smtp:(.+?)</m:UnresolvedEntry>`)
	emailAddressRe    = regexp.MustCompile(`<t:EmailAddress>(.+?)</t:EmailAddress>`)
	itemIDRe          = regexp.MustCompile(`<t:ItemId Id="(.+?)"`)
)

func (f *fakeExchange) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		f.t.Errorf("reading request body: %v", err)
		return
	}
	req := string(body)
	anchor := r.Header.Get("X-AnchorMailbox")

	op := operationOf(req)
	if op == "" {
		f.t.Errorf("unrecognized request: %s", req)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f.operations = append(f.operations, op)

	if status, ok := f.failStatus[op]; ok {
		w.WriteHeader(status)
		return
	}
	if code, ok := f.failCode[op]; ok {
		io.WriteString(w, soapResponse(faultFragment(op, code)))
		return
	}

	switch op {
	case "ResolveNames":
		m := unresolvedEntryRe.FindStringSubmatch(req)
		if m == nil {
			f.t.Errorf("ResolveNames without UnresolvedEntry: %s", req)
			return
		}
		entry, ok := f.resolve[m[1]]
		if !ok {
			io.WriteString(w, soapResponse(faultFragment(op, "ErrorNameResolutionNoResults")))
			return
		}
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:ResolveNamesResponse %s><m:ResponseMessages><m:ResolveNamesResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode><m:ResolutionSet><t:Resolution>%s</t:Resolution></m:ResolutionSet>`+
				`</m:ResolveNamesResponseMessage></m:ResponseMessages></m:ResolveNamesResponse>`,
			responseNS, mailboxFragment(entry))))

	case "ExpandDL":
		m := emailAddressRe.FindStringSubmatch(req)
		if m == nil {
			f.t.Errorf("ExpandDL without EmailAddress: %s", req)
			return
		}
		members, ok := f.expand[m[1]]
		if !ok {
			io.WriteString(w, soapResponse(faultFragment(op, "ErrorNameResolutionNoResults")))
			return
		}
		var frags strings.Builder
		for _, member := range members {
			frags.WriteString(mailboxFragment(member))
		}
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:ExpandDLResponse %s><m:ResponseMessages><m:ExpandDLResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode><m:DLExpansion>%s</m:DLExpansion>`+
				`</m:ExpandDLResponseMessage></m:ResponseMessages></m:ExpandDLResponse>`,
			responseNS, frags.String())))

	case "FindFolder":
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:FindFolderResponse %s><m:ResponseMessages><m:FindFolderResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode><m:RootFolder><t:Folders><t:SearchFolder>`+
				`<t:FolderId Id="allitems-%s" ChangeKey="ck"/>`+
				`</t:SearchFolder></t:Folders></m:RootFolder>`+
				`</m:FindFolderResponseMessage></m:ResponseMessages></m:FindFolderResponse>`,
			responseNS, anchor)))

	case "FindItem":
		items := f.allItems[anchor]
		if strings.Contains(req, `Id="recoverableitemsdeletions"`) {
			items = f.recoverable[anchor]
		}
		var frags strings.Builder
		for _, item := range items {
			frags.WriteString(fmt.Sprintf(
				`<t:Message><t:ItemId Id="%s" ChangeKey="ck"/><t:InternetMessageId>%s</t:InternetMessageId></t:Message>`,
				item.id, escapeXML(item.messageID)))
		}
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:FindItemResponse %s><m:ResponseMessages><m:FindItemResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode><m:RootFolder><t:Items>%s</t:Items></m:RootFolder>`+
				`</m:FindItemResponseMessage></m:ResponseMessages></m:FindItemResponse>`,
			responseNS, frags.String())))

	case "GetItem":
		ids := f.itemIDsOf(req)
		f.getItemIDs = append(f.getItemIDs, ids)
		var frags strings.Builder
		for _, id := range ids {
			var boxes strings.Builder
			for _, rcpt := range f.recipients[id] {
				boxes.WriteString(mailboxFragment(rcpt))
			}
			frags.WriteString(fmt.Sprintf(
				`<t:Message><t:ItemId Id="%s" ChangeKey="ck"/><t:ToRecipients>%s</t:ToRecipients></t:Message>`,
				id, boxes.String()))
		}
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:GetItemResponse %s><m:ResponseMessages><m:GetItemResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode><m:Items>%s</m:Items>`+
				`</m:GetItemResponseMessage></m:ResponseMessages></m:GetItemResponse>`,
			responseNS, frags.String())))

	case "DeleteItem":
		// Anything other than a soft delete destroys mail beyond
		// recovery.
		if !strings.Contains(req, `<m:DeleteItem DeleteType="SoftDelete">`) {
			f.t.Errorf("DeleteItem without SoftDelete: %s", req)
		}
		f.deleted[anchor] = append(f.deleted[anchor], f.itemIDsOf(req)...)
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:DeleteItemResponse %s><m:ResponseMessages><m:DeleteItemResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode>`+
				`</m:DeleteItemResponseMessage></m:ResponseMessages></m:DeleteItemResponse>`,
			responseNS)))

	case "MoveItem":
		if !strings.Contains(req, `<t:DistinguishedFolderId Id="inbox">`) {
			f.t.Errorf("MoveItem not targeting the inbox: %s", req)
		}
		f.moved[anchor] = append(f.moved[anchor], f.itemIDsOf(req)...)
		io.WriteString(w, soapResponse(fmt.Sprintf(
			`<m:MoveItemResponse %s><m:ResponseMessages><m:MoveItemResponseMessage ResponseClass="Success">`+
				`<m:ResponseCode>NoError</m:ResponseCode>`+
				`</m:MoveItemResponseMessage></m:ResponseMessages></m:MoveItemResponse>`,
			responseNS)))
	}
}

func (f *fakeExchange) itemIDsOf(req string) []string {
	var ids []string
	for _, m := range itemIDRe.FindAllStringSubmatch(req, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func operationOf(req string) string {
	for _, op := range []string{
		"ResolveNames", "ExpandDL", "FindFolder", "FindItem",
		"GetItem", "DeleteItem", "MoveItem",
	} {
		if strings.Contains(req, "<m:"+op) {
			return op
		}
	}
	return ""
}

const responseNS = `xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" ` +
	`xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"`

func soapResponse(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>` +
		inner + `</s:Body></s:Envelope>`
}

func faultFragment(op, code string) string {
	return fmt.Sprintf(
		`<m:%sResponse %s><m:ResponseMessages><m:%sResponseMessage ResponseClass="Error">`+
			`<m:ResponseCode>%s</m:ResponseCode>`+
			`</m:%sResponseMessage></m:ResponseMessages></m:%sResponse>`,
		op, responseNS, op, code, op, op)
}

func mailboxFragment(e mailboxEntry) string {
	return fmt.Sprintf(
		`<t:Mailbox><t:EmailAddress>%s</t:EmailAddress><t:RoutingType>SMTP</t:RoutingType><t:MailboxType>%s</t:MailboxType></t:Mailbox>`,
		e.address, e.mailboxType)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
