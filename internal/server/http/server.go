package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rzbill/flake/internal/journal"
	"github.com/rzbill/flake/internal/runtime"
	idsvc "github.com/rzbill/flake/internal/services/ids"
	"github.com/rzbill/flake/pkg/flake"
)

type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
	ids *idsvc.Service
}

func New(rt *runtime.Runtime) *Server {
	return NewWithService(rt, idsvc.New(rt))
}

// NewWithService builds the server around an existing service instance so
// both transports can share one.
func NewWithService(rt *runtime.Runtime, ids *idsvc.Service) *Server {
	mux := http.NewServeMux()
	s := &Server{rt: rt, ids: ids, srv: &http.Server{Handler: cors(mux)}}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/id/new", s.handleNew)
	mux.HandleFunc("/v1/id/decode", s.handleDecode)
	mux.HandleFunc("/v1/shard", s.handleShard)
	mux.HandleFunc("/v1/journal/query", s.handleJournalQuery)
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type newReq struct {
	Count int    `json:"count"`
	Tag   string `json:"tag"`
}

type newResp struct {
	// IDs are decimal strings: uint64 values do not survive a float64
	// JSON round trip above 2^53.
	IDs     []string `json:"ids"`
	ShardID uint16   `json:"shardId"`
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req := newReq{Count: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if req.Count > idsvc.MaxBatch {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "count exceeds " + strconv.Itoa(idsvc.MaxBatch)})
		return
	}
	ids := s.ids.NewBatch(r.Context(), req.Count, "http", req.Tag)
	resp := newResp{IDs: make([]string, len(ids)), ShardID: s.ids.ShardID()}
	for i, id := range ids {
		resp.IDs[i] = strconv.FormatUint(id, 10)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if r.Method == http.MethodPost {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		raw = req.ID
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "id must be an unsigned 64-bit decimal"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.ids.Decode(id))
}

func (s *Server) handleShard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"shardId": s.ids.ShardID()})
}

type journalEntryResp struct {
	ID       string       `json:"id"`
	TsMs     uint64       `json:"tsMs"`
	ShardID  uint16       `json:"shardId"`
	Sequence uint16       `json:"sequence"`
	Meta     journal.Meta `json:"meta"`
}

type journalQueryResp struct {
	Entries   []journalEntryResp `json:"entries"`
	NextToken string             `json:"nextToken,omitempty"`
}

func (s *Server) handleJournalQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	req := idsvc.QueryRequest{Filter: q.Get("filter")}
	var err error
	if v := q.Get("startMs"); v != "" {
		if req.StartMs, err = strconv.ParseUint(v, 10, 64); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("endMs"); v != "" {
		if req.EndMs, err = strconv.ParseUint(v, 10, 64); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("token"); v != "" {
		if req.Token, err = strconv.ParseUint(v, 10, 64); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	res, err := s.ids.Query(r.Context(), req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	resp := journalQueryResp{Entries: make([]journalEntryResp, 0, len(res.Entries))}
	for _, e := range res.Entries {
		resp.Entries = append(resp.Entries, journalEntryResp{
			ID:       strconv.FormatUint(e.ID, 10),
			TsMs:     flake.DecodeTimestamp(e.ID),
			ShardID:  flake.DecodeShard(e.ID),
			Sequence: flake.DecodeSequence(e.ID),
			Meta:     e.Meta,
		})
	}
	if res.NextToken != 0 {
		resp.NextToken = strconv.FormatUint(res.NextToken, 10)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
