// Package idsvc implements the ID issuance facade on top of the runtime's
// generator and issuance journal. It provides single and batch minting,
// decode, and journal queries with optional CEL filtering, consumed by the
// gRPC and HTTP transports.
//
// Example:
//
//	svc := idsvc.New(rt)
//	id := svc.NewID(ctx, "http", "orders")
//	parts := svc.Decode(id)
//	res, _ := svc.Query(ctx, idsvc.QueryRequest{Filter: `tag == "orders"`})
package idsvc
