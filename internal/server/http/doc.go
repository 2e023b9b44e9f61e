// Package httpserver provides the JSON HTTP facade over the ID service.
// Routes:
//
//	GET  /v1/healthz        health check
//	POST /v1/id/new         mint IDs ({"count":N,"tag":"..."}), decimal strings
//	GET  /v1/id/decode?id=  split an ID into timestamp/shard/sequence
//	GET  /v1/shard          this instance's shard
//	GET  /v1/journal/query  time-range query with optional CEL filter
package httpserver
