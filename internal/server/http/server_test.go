package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/flake/internal/config"
	"github.com/rzbill/flake/internal/runtime"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/pkg/flake"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.ShardID = 21
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, r)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestNewAndDecode(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/v1/id/new", `{"count":3,"tag":"orders"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		IDs     []string `json:"ids"`
		ShardID uint16   `json:"shardId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode resp: %v", err)
	}
	if len(resp.IDs) != 3 || resp.ShardID != 21 {
		t.Fatalf("resp: %+v", resp)
	}

	w = do(t, s, http.MethodGet, "/v1/id/decode?id="+resp.IDs[0], "")
	if w.Code != http.StatusOK {
		t.Fatalf("decode status %d", w.Code)
	}
	var dec struct {
		ID       string `json:"id"`
		TsMs     uint64 `json:"tsMs"`
		ShardID  uint16 `json:"shardId"`
		Sequence uint16 `json:"sequence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &dec); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if dec.ID != resp.IDs[0] || dec.ShardID != 21 {
		t.Fatalf("decoded: %+v", dec)
	}
	id, _ := strconv.ParseUint(resp.IDs[0], 10, 64)
	if dec.TsMs != flake.DecodeTimestamp(id) {
		t.Fatalf("timestamp mismatch")
	}
}

func TestNewDefaultsToOne(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/v1/id/new", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		IDs []string `json:"ids"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.IDs) != 1 {
		t.Fatalf("ids: %v", resp.IDs)
	}
}

func TestNewRejectsOversizeBatch(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/v1/id/new", `{"count":2000}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestDecodeRejectsBadID(t *testing.T) {
	s := newTestServer(t)
	if w := do(t, s, http.MethodGet, "/v1/id/decode?id=nope", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/v1/id/decode", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing id status %d", w.Code)
	}
}

func TestShard(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/shard", "")
	var resp map[string]int
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["shardId"] != 21 {
		t.Fatalf("shard resp: %v", resp)
	}
}

func TestJournalQuery(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/v1/id/new", `{"count":2,"tag":"a"}`)
	do(t, s, http.MethodPost, "/v1/id/new", `{"count":1,"tag":"b"}`)

	w := do(t, s, http.MethodGet, "/v1/journal/query?filter="+"tag%20%3D%3D%20%22a%22", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Entries []struct {
			ID   string `json:"id"`
			Meta struct {
				Tag string `json:"tag"`
			} `json:"meta"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries: %d", len(resp.Entries))
	}
	for _, e := range resp.Entries {
		if e.Meta.Tag != "a" {
			t.Fatalf("filter leaked: %+v", e)
		}
	}
}

func TestJournalQueryBadFilter(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/journal/query?filter=%28", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}
