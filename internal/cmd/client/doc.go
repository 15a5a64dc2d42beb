// Package client provides the `duraq` command-line client.
//
// The CLI talks to the duraq HTTP API to perform common queue operations
// from a terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via an apiURL func. When using the standalone binary, it reads
// DURAQ_HTTP and defaults to http://127.0.0.1:8080.
//
// Usage
//
//	duraq queue create --name orders
//	duraq queue enqueue --name orders --priority 0 --data '{"id":42}'
//	duraq queue dequeue --name orders
//	duraq queue info --name orders
//	duraq queue reset-counters --name orders
//	duraq queue shutdown --name orders
//	duraq queue list
//
// Notes
//
//   - dequeue prints the payload base64-encoded, plus the parsed form when
//     it is valid JSON; use --raw to write the bytes directly to stdout.
//   - shutdown stops the queue's actor only; its durable entries remain
//     and a later create (or auto-create) picks them up again.
package client
