package ews

import "encoding/xml"

// envelope is the SOAP 1.1 wrapper around a single EWS operation. The
// header always carries the requested server version and timezone
// context; ExchangeImpersonation is added when a request acts on a
// mailbox other than the service account's own.
type envelope struct {
	XMLName xml.Name `xml:"s:Envelope"`
	XMLNSs  string   `xml:"xmlns:s,attr"`
	XMLNSm  string   `xml:"xmlns:m,attr"`
	XMLNSt  string   `xml:"xmlns:t,attr"`
	Header  soapHeader
	Body    soapBody
}

type soapHeader struct {
	XMLName               xml.Name               `xml:"s:Header"`
	RequestServerVersion  requestServerVersion   `xml:"t:RequestServerVersion"`
	ExchangeImpersonation *exchangeImpersonation `xml:"t:ExchangeImpersonation,omitempty"`
	TimeZoneContext       timeZoneContext        `xml:"t:TimeZoneContext"`
}

type soapBody struct {
	XMLName   xml.Name `xml:"s:Body"`
	Operation any
}

type requestServerVersion struct {
	Version string `xml:"Version,attr"`
}

type exchangeImpersonation struct {
	ConnectingSID connectingSID `xml:"t:ConnectingSID"`
}

type connectingSID struct {
	PrimarySmtpAddress string `xml:"t:PrimarySmtpAddress"`
}

type timeZoneContext struct {
	TimeZoneDefinition timeZoneDefinition `xml:"t:TimeZoneDefinition"`
}

type timeZoneDefinition struct {
	ID string `xml:"Id,attr"`
}

// newEnvelope wraps op in a SOAP envelope for the given session
// settings. impersonate may be empty.
func newEnvelope(version, timezone, impersonate string, op any) envelope {
	env := envelope{
		XMLNSs: soapNS,
		XMLNSm: messagesNS,
		XMLNSt: typesNS,
		Header: soapHeader{
			RequestServerVersion: requestServerVersion{Version: version},
			TimeZoneContext: timeZoneContext{
				TimeZoneDefinition: timeZoneDefinition{ID: timezone},
			},
		},
		Body: soapBody{Operation: op},
	}
	if impersonate != "" {
		env.Header.ExchangeImpersonation = &exchangeImpersonation{
			ConnectingSID: connectingSID{PrimarySmtpAddress: impersonate},
		}
	}
	return env
}
