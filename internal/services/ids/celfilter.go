package idsvc

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/flake/internal/journal"
	"github.com/rzbill/flake/pkg/flake"
)

// celFilter wraps a compiled CEL program and provides a common evaluator
// used by journal queries. When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("shard", cel.IntType),
		cel.Variable("sequence", cel.IntType),
		cel.Variable("ts_ms", cel.IntType),
		// Issuance metadata recorded at generation time
		cel.Variable("source", cel.StringType),
		cel.Variable("tag", cel.StringType),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against an issuance record. When
// disabled, returns true.
func (f celFilter) Eval(e journal.Entry) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"shard":    int64(flake.DecodeShard(e.ID)),
		"sequence": int64(flake.DecodeSequence(e.ID)),
		"ts_ms":    int64(flake.DecodeTimestamp(e.ID)),
		"source":   e.Meta.Source,
		"tag":      e.Meta.Tag,
		"now_ms":   time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
