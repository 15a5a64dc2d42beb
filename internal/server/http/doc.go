// Package httpserver serves the duraq JSON API.
//
// Endpoints (all under /v1):
//
//	GET  /v1/healthz                 liveness and storage health
//	GET  /v1/queues                  durable queue names with running status
//	POST /v1/queues/create           start a queue actor explicitly
//	POST /v1/queues/enqueue          {queue, priority, payload}
//	POST /v1/queues/dequeue          {queue}; 204 when the queue is empty
//	GET  /v1/queues/info?queue=NAME  counters snapshot
//	POST /v1/queues/reset-counters   {queue}
//	POST /v1/queues/shutdown         {queue}; durable entries are kept
//
// Payloads are raw bytes, carried base64-encoded in JSON. An empty dequeue
// is a 204, not an error status: it is the queue's normal idle condition.
package httpserver
