package report

import (
	"encoding/base64"
	"testing"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
	f, err := ParseDataURI("data:application/pdf;base64," + payload)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if f.MIME != "application/pdf" {
		t.Fatalf("unexpected mime %q", f.MIME)
	}
	if string(f.Data) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected data %q", f.Data)
	}
}

func TestParseDataURI_Rejections(t *testing.T) {
	cases := []struct {
		name string
		uri  string
	}{
		{"empty", ""},
		{"no scheme", "application/pdf;base64,AAAA"},
		{"no comma", "data:application/pdf;base64"},
		{"not base64 encoded", "data:text/plain,hello"},
		{"bad payload", "data:text/plain;base64,not-base64!!!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDataURI(tc.uri); err == nil {
				t.Fatalf("expected error for %q", tc.uri)
			}
		})
	}
}

func TestObjectKey_Extension(t *testing.T) {
	cases := []struct {
		mime string
		want string
	}{
		{"application/pdf", "abc/report.pdf"},
		{"image/png", "abc/report.png"},
		{"image/jpeg", "abc/report.jpg"},
		{"text/plain", "abc/report.txt"},
		{"application/octet-stream", "abc/report.bin"},
	}
	for _, tc := range cases {
		if got := objectKey("abc", tc.mime); got != tc.want {
			t.Fatalf("objectKey(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}
