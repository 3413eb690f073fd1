package debugserver

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/synnergy-labs/sir-compiler/core/abi"
	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/mockruntime"
	"github.com/synnergy-labs/sir-compiler/core/yul"
)

const counterSource = `
object "Counter" {
  code {
    function inc() {
      sstore(0, add(sload(0), 1))
    }
    function get() -> result {
      result := sload(0)
    }
  }
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	obj, err := yul.Parse(counterSource)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := yul.Lower(ctx, "Counter", obj)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	loaded, err := mockruntime.LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	return New(loaded, mockruntime.Options{}, rate.NewLimiter(1000, 1000))
}

func TestHandleDispatchListsExportedFunctions(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/dispatch", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var entries []dispatchEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["inc"] || !names["get"] {
		t.Fatalf("expected inc and get in dispatch table, got %+v", entries)
	}
}

func TestHandleInvokeRoundTripsCounter(t *testing.T) {
	srv := newTestServer(t)

	empty, err := abi.Encode(nil)
	if err != nil {
		t.Fatalf("encode empty argpack: %v", err)
	}
	emptyHex := hex.EncodeToString(empty)

	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(invokeRequest{Entry: "inc", ArgpackHex: emptyHex})
		req := httptest.NewRequest(http.MethodPost, "/invoke", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("inc call %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		var resp invokeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.Status {
			t.Fatalf("inc call %d aborted: %s", i, resp.Error)
		}
	}

	body, _ := json.Marshal(invokeRequest{Entry: "get", ArgpackHex: emptyHex})
	req := httptest.NewRequest(http.MethodPost, "/invoke", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	var resp invokeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Status {
		t.Fatalf("get aborted: %s", resp.Error)
	}
	if resp.InvocationID == "" {
		t.Fatal("expected a non-empty invocation id")
	}

	// /storage should now reflect the written slot.
	req = httptest.NewRequest(http.MethodGet, "/storage", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	var dump []storageEntry
	if err := json.Unmarshal(w.Body.Bytes(), &dump); err != nil {
		t.Fatalf("decode storage dump: %v", err)
	}
	if len(dump) == 0 {
		t.Fatal("expected at least one storage entry after three inc() calls")
	}
}

func TestRateLimiterRejectsOverBudget(t *testing.T) {
	srv := newTestServer(t)
	srv.limiter = rate.NewLimiter(0, 0)

	req := httptest.NewRequest(http.MethodGet, "/dispatch", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}
