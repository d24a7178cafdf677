package ews

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Protocol errors decoded from EWS ResponseCode values.
var (
	// ErrMailboxNotFound is returned when an address does not resolve
	// to a mailbox on a tenant. At the account level it triggers
	// failover to the next session.
	ErrMailboxNotFound = errors.New("mailbox not found")

	// ErrMessageNotFound is returned when an item lookup matched
	// nothing.
	ErrMessageNotFound = errors.New("message not found")

	// ErrMissingResponseCode is returned when a response carries no
	// ResponseCode element at all, which indicates a protocol-level
	// problem rather than an operation outcome.
	ErrMissingResponseCode = errors.New("response code not found")
)

// ResponseError is any EWS ResponseCode not covered by a sentinel
// above.
type ResponseError struct {
	Code string
}

func (e *ResponseError) Error() string {
	return e.Code
}

// HTTPError is a non-2xx reply from the Exchange endpoint. It is a
// transport failure, distinct from protocol errors carried in a
// ResponseCode.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// responseError decodes the first ResponseCode element found in the
// messages or errors namespace.
//
// NoError and ErrorNameResolutionNoResults both map to nil:
// the latter means "no such mailbox" only for ResolveNames and
// ExpandDL, and those callers detect the empty result themselves.
func responseError(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return ErrMissingResponseCode
		}
		if err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "ResponseCode" {
			continue
		}
		if se.Name.Space != messagesNS && se.Name.Space != errorsNS {
			continue
		}
		var code string
		if err := dec.DecodeElement(&code, &se); err != nil {
			return fmt.Errorf("parsing response code: %w", err)
		}
		switch code {
		case "NoError", "ErrorNameResolutionNoResults":
			return nil
		case "ErrorNonExistentMailbox", "ErrorMailboxNotFound":
			return ErrMailboxNotFound
		case "ErrorItemNotFound":
			return ErrMessageNotFound
		default:
			return &ResponseError{Code: code}
		}
	}
}

// failureMessage renders an error the way it is recorded on a
// per-address remediation result.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrMailboxNotFound):
		return "Mailbox not found"
	case errors.Is(err, ErrMessageNotFound):
		return "Message not found"
	default:
		return err.Error()
	}
}
