// Package microrpc implements an allocation-free JSON-RPC engine for
// resource-constrained and hot-path environments. It tokenizes a raw request
// into a flat, indexable token tree without touching the heap, dispatches
// JSON-RPC 1.x and 2.0 requests (single or batched) to registered handlers,
// and serializes responses into a caller-supplied bounded buffer, truncating
// safely rather than overflowing.
//
// The engine owns no sockets and runs no goroutines; callers feed it raw
// bytes and carry the result to whatever transport they use. The bundled
// stdio server and client builder are convenience layers on top of that
// contract and allocate freely.
package microrpc
