package pyroscope

import "fmt"

// classifyStatus maps one HTTP response status to an upload outcome: nil
// for 2xx, a RetryableError for 5xx, and a TerminalError for everything
// else. 400 and 404 get specific reasons because they are the two
// misconfigurations users actually hit (bad token, bad ingest path).
func classifyStatus(status int, url string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500 && status < 600:
		return &RetryableError{Cause: fmt.Errorf("server returned %d", status)}
	case status == 400:
		return &TerminalError{Reason: "server returned 400, check your API key"}
	case status == 404:
		return &TerminalError{Reason: "server returned 404, check your endpoint path"}
	default:
		return &TerminalError{Reason: fmt.Sprintf("POST to %s, but got %d", url, status)}
	}
}
