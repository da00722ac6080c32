package httpview_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/view/httpview"
)

func TestHealthEndpoint(t *testing.T) {
	v := httpview.New(nil)
	srv := httptest.NewServer(v.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestEventsStreamReceivesUpdate(t *testing.T) {
	v := httpview.New(nil)
	srv := httptest.NewServer(v.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	defer resp.Body.Close()

	// Give the handler a moment to subscribe before we publish.
	time.Sleep(20 * time.Millisecond)
	v.Update("ni", []types.Candidate{{Word: "你", Weight: 100, Pinyin: "ni"}}, types.Page{Current: 1, Total: 0})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read sse line: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("expected SSE data line, got %q", line)
	}
	if !strings.Contains(line, `"raw":"ni"`) || !strings.Contains(line, "你") {
		t.Fatalf("expected update payload in event, got %q", line)
	}
}
