package pyroscope

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Form field names the ingestion server expects. No other fields are ever
// sent.
const (
	fieldProfile          = "profile"
	fieldSampleTypeConfig = "sample_type_config"
)

// formField is one named binary part of the upload body.
type formField struct {
	name    string
	payload []byte
}

// encodeMultipart frames the fields, in order, into a multipart/form-data
// body under a fresh random boundary and returns the matching Content-Type
// header value.
//
// The framing is byte-exact for the Pyroscope ingest parser, which has no
// leniency path: CRLF line endings, both name and filename set to the
// field name, application/octet-stream per part, and a final --boundary--
// terminator with no trailing CRLF. Field names are emitted without
// escaping; only the two known literal names are used, and the target
// parser does not understand escaped forms. Do not swap this for
// mime/multipart, which emits a different header set and a trailing CRLF.
//
// The boundary is 16 random bytes hex-encoded. A collision between the
// boundary and payload bytes is possible in principle and is not checked;
// at 128 bits of randomness it is treated as a non-issue.
func encodeMultipart(fields []formField) (contentType string, body []byte, err error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("pyroscope: generate boundary: %w", err)
	}
	boundary := hex.EncodeToString(raw)

	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString("--")
		buf.WriteString(boundary)
		buf.WriteString("\r\nContent-Disposition: form-data; name=\"")
		buf.WriteString(f.name)
		buf.WriteString("\"; filename=\"")
		buf.WriteString(f.name)
		buf.WriteString("\"\r\nContent-Type: application/octet-stream\r\n\r\n")
		buf.Write(f.payload)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--")
	buf.WriteString(boundary)
	buf.WriteString("--")

	return "multipart/form-data; boundary=" + boundary, buf.Bytes(), nil
}
