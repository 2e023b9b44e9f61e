package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// HTTPTransport implements IDTransport over the JSON HTTP API.
type HTTPTransport struct {
	base   string
	client *http.Client
}

// NewHTTPTransport constructs a transport rooted at base, e.g.
// http://127.0.0.1:8080.
func NewHTTPTransport(base string) *HTTPTransport {
	return &HTTPTransport{base: base, client: http.DefaultClient}
}

func (t *HTTPTransport) postJSON(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *HTTPTransport) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

func (t *HTTPTransport) do(req *http.Request, out any) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server %s: %s", resp.Status, bytes.TrimSpace(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type newIDResp struct {
	IDs     []string `json:"ids"`
	ShardID uint16   `json:"shardId"`
}

// Generate mints one ID.
func (t *HTTPTransport) Generate(ctx context.Context) (uint64, error) {
	ids, err := t.GenerateBatch(ctx, 1, "")
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// GenerateBatch mints count IDs, recording tag in the journal.
func (t *HTTPTransport) GenerateBatch(ctx context.Context, count int, tag string) ([]uint64, error) {
	var resp newIDResp
	if err := t.postJSON(ctx, "/v1/id/new", map[string]any{"count": count, "tag": tag}, &resp); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(resp.IDs))
	for _, s := range resp.IDs {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type decodeResp struct {
	ID       string `json:"id"`
	TsMs     uint64 `json:"tsMs"`
	ShardID  uint16 `json:"shardId"`
	Sequence uint16 `json:"sequence"`
}

// Decode splits an ID via the server.
func (t *HTTPTransport) Decode(ctx context.Context, id uint64) (Decoded, error) {
	var resp decodeResp
	if err := t.getJSON(ctx, "/v1/id/decode?id="+strconv.FormatUint(id, 10), &resp); err != nil {
		return Decoded{}, err
	}
	parsed, err := strconv.ParseUint(resp.ID, 10, 64)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{ID: parsed, TimestampMs: resp.TsMs, ShardID: resp.ShardID, Sequence: resp.Sequence}, nil
}

type journalQueryResp struct {
	Entries []struct {
		ID       string `json:"id"`
		TsMs     uint64 `json:"tsMs"`
		ShardID  uint16 `json:"shardId"`
		Sequence uint16 `json:"sequence"`
		Meta     struct {
			Source string `json:"source"`
			Tag    string `json:"tag"`
		} `json:"meta"`
	} `json:"entries"`
	NextToken string `json:"nextToken"`
}

// QueryJournal fetches one page of issuance records.
func (t *HTTPTransport) QueryJournal(ctx context.Context, q JournalQuery) ([]JournalEntry, uint64, error) {
	v := url.Values{}
	if q.StartMs != 0 {
		v.Set("startMs", strconv.FormatUint(q.StartMs, 10))
	}
	if q.EndMs != 0 {
		v.Set("endMs", strconv.FormatUint(q.EndMs, 10))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Token != 0 {
		v.Set("token", strconv.FormatUint(q.Token, 10))
	}
	path := "/v1/journal/query"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var resp journalQueryResp
	if err := t.getJSON(ctx, path, &resp); err != nil {
		return nil, 0, err
	}
	entries := make([]JournalEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		id, err := strconv.ParseUint(e.ID, 10, 64)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, JournalEntry{
			ID: id, TsMs: e.TsMs, ShardID: e.ShardID, Sequence: e.Sequence,
			Source: e.Meta.Source, Tag: e.Meta.Tag,
		})
	}
	var next uint64
	if resp.NextToken != "" {
		next, _ = strconv.ParseUint(resp.NextToken, 10, 64)
	}
	return entries, next, nil
}
