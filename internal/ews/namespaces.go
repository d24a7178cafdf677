// Package ews implements the subset of Exchange Web Services used for
// phishing remediation: resolving an SMTP address to the mailboxes it
// delivers to, expanding distribution lists and group mailboxes, and
// soft-deleting or restoring a message in every mailbox it reached.
package ews

// The four XML namespaces every EWS request and response uses. Request
// envelopes declare them with the s/m/t prefixes; responses are matched
// by namespace URL.
const (
	soapNS     = "http://schemas.xmlsoap.org/soap/envelope/"
	messagesNS = "http://schemas.microsoft.com/exchange/services/2006/messages"
	typesNS    = "http://schemas.microsoft.com/exchange/services/2006/types"
	errorsNS   = "http://schemas.microsoft.com/exchange/services/2006/errors"
)
