// Package runtime wires storage, the ID generator, and the issuance
// journal into a single-node Flake instance. It exposes Open/Close, basic
// health checks, and the retention loop consumed by the server command.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Issue an ID
//	id := rt.Generator().Next()
package runtime
