// Package client provides the `flake` command-line client.
//
// The CLI talks to the Flake HTTP and gRPC endpoints to mint and inspect
// IDs from a terminal. It is primarily intended for developers and
// operators.
//
// Installation
//
//	go install github.com/rzbill/flake/cmd/flake@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080. The gRPC address is read from the
// FLAKE_GRPC environment variable (default 127.0.0.1:50051).
//
// Usage
//
//	flake id new
//	flake id new --count 10 --tag orders
//	flake id new --grpc
//
//	# Mint without a server; shard derived from host identity or explicit
//	flake id new --local
//	flake id new --local --shard 42
//
//	flake id decode 8589934593
//	flake id decode 8589934593 --remote --grpc
//
//	flake journal query --start 2026-08-01T00:00:00Z --filter 'tag == "orders"'
//	flake journal query --limit 100 --all
//
// Notes
//
//   - id new uses the HTTP API unless --grpc is set. Tags are recorded in
//     the issuance journal and only travel over HTTP.
//   - journal query uses the HTTP API; pages are NDJSON, one record per
//     line, with a trailing nextToken object when more remain.
package client
