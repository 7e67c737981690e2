package pyroscope

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"regexp"
	"strings"
	"testing"
)

// parseParts runs the encoded body through the stdlib multipart reader and
// returns the parts keyed by form name.
func parseParts(t *testing.T, contentType string, body []byte) map[string][]byte {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType(%q) error = %v", contentType, err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("media type = %q, want multipart/form-data", mediaType)
	}

	parts := make(map[string][]byte)
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("read part %q: %v", part.FormName(), err)
		}
		parts[part.FormName()] = data
	}
	return parts
}

func TestEncodeMultipart_RoundTrip(t *testing.T) {
	contentType, body, err := encodeMultipart([]formField{
		{name: "profile", payload: []byte{0x1f, 0x8b, 0x00, 0xff}},
		{name: "sample_type_config", payload: []byte(`{"cpu-time":{}}`)},
	})
	if err != nil {
		t.Fatalf("encodeMultipart() error = %v", err)
	}

	parts := parseParts(t, contentType, body)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if got := parts["profile"]; !bytes.Equal(got, []byte{0x1f, 0x8b, 0x00, 0xff}) {
		t.Errorf("profile part = %v, want original payload", got)
	}
	if got := parts["sample_type_config"]; string(got) != `{"cpu-time":{}}` {
		t.Errorf("sample_type_config part = %q", got)
	}
}

func TestEncodeMultipart_EmptyPayload(t *testing.T) {
	contentType, body, err := encodeMultipart([]formField{
		{name: "profile", payload: nil},
	})
	if err != nil {
		t.Fatalf("encodeMultipart() error = %v", err)
	}

	parts := parseParts(t, contentType, body)
	if got, ok := parts["profile"]; !ok || len(got) != 0 {
		t.Errorf("profile part = %v (present=%v), want empty part", got, ok)
	}
}

func TestEncodeMultipart_Framing(t *testing.T) {
	contentType, body, err := encodeMultipart([]formField{
		{name: "profile", payload: []byte("DATA")},
	})
	if err != nil {
		t.Fatalf("encodeMultipart() error = %v", err)
	}

	boundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(boundary) {
		t.Errorf("boundary = %q, want 32 hex characters", boundary)
	}

	want := "--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="profile"; filename="profile"` + "\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		"DATA\r\n" +
		"--" + boundary + "--"
	if string(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	if bytes.HasSuffix(body, []byte("\r\n")) {
		t.Error("body ends with CRLF, want closing delimiter with no trailing CRLF")
	}
}

func TestEncodeMultipart_FreshBoundaryPerCall(t *testing.T) {
	ct1, _, err := encodeMultipart(nil)
	if err != nil {
		t.Fatalf("encodeMultipart() error = %v", err)
	}
	ct2, _, err := encodeMultipart(nil)
	if err != nil {
		t.Fatalf("encodeMultipart() error = %v", err)
	}
	if ct1 == ct2 {
		t.Errorf("two calls produced the same boundary: %q", ct1)
	}
}
