package ews

import (
	"bytes"
	"encoding/json"
)

// Result is the outcome of remediating one display address.
type Result struct {
	// MailboxType is the classification as discovered.
	MailboxType string `json:"mailbox_type"`

	// Success is false when any step for this address failed.
	Success bool `json:"success"`

	// Message is the human-readable outcome: "deleted", "restored",
	// "Message not found", "Mailbox not found" or an error string.
	Message string `json:"message"`

	// Owner is set when the entry is a group mailbox.
	Owner string `json:"owner,omitempty"`

	// Members is set when the entry is a distribution list.
	Members []string `json:"members,omitempty"`

	// Forwards lists the recipients a found message had been
	// forwarded or replied to.
	Forwards []string `json:"forwards,omitempty"`
}

func (r *Result) fail(message string) {
	r.Success = false
	r.Message = message
}

// Results maps display addresses to their outcome, in discovery order.
// Each address appears at most once per run; the first visit wins.
type Results struct {
	order   []string
	entries map[string]*Result
}

// NewResults allocates an empty result set for one run.
func NewResults() *Results {
	return &Results{entries: make(map[string]*Result)}
}

// Has reports whether an address already has an entry.
func (r *Results) Has(address string) bool {
	_, ok := r.entries[address]
	return ok
}

// Add allocates the entry for an address. New entries start successful
// with no message.
func (r *Results) Add(address, mailboxType string) *Result {
	if res, ok := r.entries[address]; ok {
		return res
	}
	res := &Result{MailboxType: mailboxType, Success: true}
	r.entries[address] = res
	r.order = append(r.order, address)
	return res
}

// Get returns the entry for an address, or nil.
func (r *Results) Get(address string) *Result {
	return r.entries[address]
}

// Addresses returns the display addresses in discovery order.
func (r *Results) Addresses() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of entries.
func (r *Results) Len() int {
	return len(r.order)
}

// MarshalJSON encodes the results as a JSON object keyed by display
// address, preserving discovery order.
func (r *Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, addr := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(addr)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.entries[addr])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
