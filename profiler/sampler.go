package profiler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime/pprof"
	"time"

	"github.com/klauspost/compress/gzip"
)

// CPUSampler collects CPU profiles via runtime/pprof. Only one CPU
// profile can be active per process, so a CPUSampler must not be shared
// by concurrently running profilers.
type CPUSampler struct{}

// NewCPUSampler creates a sampler backed by the runtime CPU profiler.
func NewCPUSampler() *CPUSampler {
	return &CPUSampler{}
}

// Sample collects one CPU profile covering the period. runtime/pprof
// emits gzip-wrapped protobuf; the export pipeline owns compression, so
// the wrapper is stripped and the raw serialized profile returned.
func (s *CPUSampler) Sample(ctx context.Context, period time.Duration) ([]byte, error) {
	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		return nil, fmt.Errorf("profiler: start cpu profile: %w", err)
	}

	timer := time.NewTimer(period)
	select {
	case <-ctx.Done():
		timer.Stop()
		pprof.StopCPUProfile()
		return nil, ctx.Err()
	case <-timer.C:
	}
	pprof.StopCPUProfile()

	return gunzip(buf.Bytes())
}

// gunzip unwraps one gzip stream.
func gunzip(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("profiler: unwrap profile: %w", err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("profiler: unwrap profile: %w", err)
	}
	return raw, nil
}
