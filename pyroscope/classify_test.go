package pyroscope

import (
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	const url = "http://localhost:4040/ingest?name=app"

	tests := []struct {
		name      string
		status    int
		wantNil   bool
		retryable bool
		contains  string
	}{
		{name: "ok", status: 200, wantNil: true},
		{name: "accepted", status: 202, wantNil: true},
		{name: "internal error", status: 500, retryable: true, contains: "500"},
		{name: "bad gateway", status: 502, retryable: true, contains: "502"},
		{name: "unavailable", status: 503, retryable: true, contains: "503"},
		{name: "bad request", status: 400, contains: "check your API key"},
		{name: "not found", status: 404, contains: "check your endpoint path"},
		{name: "unauthorized", status: 401, contains: "POST to " + url + ", but got 401"},
		{name: "too many requests", status: 429, contains: "but got 429"},
		{name: "redirect", status: 302, contains: "but got 302"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus(tt.status, url)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("classifyStatus(%d) = %v, want nil", tt.status, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("classifyStatus(%d) = nil, want error", tt.status)
			}
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsTerminal(err); got == tt.retryable {
				t.Errorf("IsTerminal() = %v, want %v", got, !tt.retryable)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err, tt.contains)
			}
		})
	}
}
