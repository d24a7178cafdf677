package ews

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Response fragments collected from EWS replies. Response elements are
// matched by namespace URL rather than prefix, since servers choose
// their own prefixes.

type mailboxXML struct {
	Name         string `xml:"http://schemas.microsoft.com/exchange/services/2006/types Name"`
	EmailAddress string `xml:"http://schemas.microsoft.com/exchange/services/2006/types EmailAddress"`
	MailboxType  string `xml:"http://schemas.microsoft.com/exchange/services/2006/types MailboxType"`
}

type folderIDXML struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr"`
}

type itemIDXML struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr"`
}

type messageXML struct {
	ItemID            itemIDXML `xml:"http://schemas.microsoft.com/exchange/services/2006/types ItemId"`
	InternetMessageID string    `xml:"http://schemas.microsoft.com/exchange/services/2006/types InternetMessageId"`
}

// findAll decodes every element with the given name into a value of
// type T, at any depth. This mirrors a //ns:name search over the
// response tree.
func findAll[T any](data []byte, space, local string) ([]T, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []T
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local || se.Name.Space != space {
			continue
		}
		var v T
		if err := dec.DecodeElement(&v, &se); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", local, err)
		}
		out = append(out, v)
	}
}

// findFirst returns the first matching element or nil.
func findFirst[T any](data []byte, space, local string) (*T, error) {
	all, err := findAll[T](data, space, local)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}
