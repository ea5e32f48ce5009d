package gameapi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/MrWong99/starbridge/internal/designs"
)

// Element is one attribute-carrying XML element of an API response.
type Element struct {
	Name   string
	Record designs.Record
}

// Decode walks an API response document and returns every element that
// carries at least one attribute, in document order. Attribute names become
// record keys. Elements without attributes (containers) are skipped.
func Decode(body []byte) ([]Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var out []Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gameapi: decode: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || len(start.Attr) == 0 {
			continue
		}
		rec := make(designs.Record, len(start.Attr))
		for _, a := range start.Attr {
			rec[a.Name.Local] = a.Value
		}
		out = append(out, Element{Name: start.Name.Local, Record: rec})
	}
	return out, nil
}

// apiError extracts the error message of an error document such as
// <UserService><Error errorMessage="..."/></UserService>.
func apiError(elements []Element) (string, bool) {
	for _, e := range elements {
		if e.Name != "Error" {
			continue
		}
		for _, key := range []string{"errorMessage", "ErrorMessage", "Message"} {
			if msg, ok := e.Record.Get(key); ok {
				return msg, true
			}
		}
		return "unknown error", true
	}
	return "", false
}
