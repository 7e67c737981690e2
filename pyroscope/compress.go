package pyroscope

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// gzipProfile compresses the serialized profile at the default level. The
// writer is closed before the bytes are read so the gzip trailer and CRC
// are finalized. An error here is a local fault and is never retried.
func gzipProfile(profile []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(profile); err != nil {
		return nil, fmt.Errorf("pyroscope: compress profile: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("pyroscope: finalize gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}
