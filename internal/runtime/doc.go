// Package runtime assembles a single-node duraq instance: one shared Pebble
// database, the loaded configuration, and the queue registry on top. The
// HTTP server and CLI talk to a Runtime rather than to storage directly.
package runtime
