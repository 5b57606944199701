package asset

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
)

// DataURI is a parsed data: URI.
type DataURI struct {
	Header string
	Data   []byte
}

// Ext returns the file extension for the payload: svg when the header
// mentions svg+xml, png otherwise.
func (d DataURI) Ext() string {
	if strings.Contains(strings.ToLower(d.Header), "svg+xml") {
		return "svg"
	}
	return "png"
}

// ParseDataURI splits src at its first comma and decodes the payload.
// Payloads declared ;base64 are base64-decoded (padded or unpadded);
// others are percent-decoded when possible and taken literally otherwise.
func ParseDataURI(src string) (DataURI, error) {
	if !strings.HasPrefix(strings.ToLower(src), "data:") {
		return DataURI{}, core.Errorf(core.KindUnsupportedInput, "not a data URI")
	}
	header, payload, ok := strings.Cut(src, ",")
	if !ok {
		return DataURI{}, core.Errorf(core.KindDecodeFailure, "data URI has no payload separator")
	}

	if strings.Contains(strings.ToLower(header), ";base64") {
		payload = strings.Join(strings.Fields(payload), "")
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			var rawErr error
			data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if rawErr != nil {
				return DataURI{}, core.E(core.KindDecodeFailure, "decoding base64 payload", err)
			}
		}
		return DataURI{Header: header, Data: data}, nil
	}

	if unescaped, err := url.PathUnescape(payload); err == nil {
		payload = unescaped
	}
	return DataURI{Header: header, Data: []byte(payload)}, nil
}
