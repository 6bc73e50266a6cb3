// Package report handles uploaded medical report attachments. Reports
// arrive inline as data URIs and can optionally be archived to object
// storage alongside the analysis they belong to.
package report

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// File is a decoded report attachment.
type File struct {
	MIME string
	Data []byte
}

// ParseDataURI decodes a "data:<mime>;base64,<payload>" URI. Only
// base64-encoded URIs are accepted; that is the only form clients send.
func ParseDataURI(uri string) (File, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return File{}, fmt.Errorf("report: data uri is empty")
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return File{}, fmt.Errorf("report: not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return File{}, fmt.Errorf("report: malformed data uri")
	}
	mime, enc, hasEnc := strings.Cut(meta, ";")
	if !hasEnc || enc != "base64" {
		return File{}, fmt.Errorf("report: data uri must be base64 encoded")
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return File{}, fmt.Errorf("report: decode data uri: %w", err)
	}
	return File{MIME: mime, Data: data}, nil
}
