/*
Package ipc serves search sessions over a msgpack stream, typically the
process's stdin and stdout.

Each message is one msgpack map. Requests name an operation:

	{"id": "1", "op": "open", "limit": 20}
	{"id": "2", "op": "query", "session": "<id>", "q": "util"}
	{"id": "3", "op": "results", "session": "<id>"}
	{"id": "4", "op": "reset", "session": "<id>"}
	{"id": "5", "op": "close", "session": "<id>"}
	{"id": "6", "op": "stats"}
	{"id": "7", "op": "health"}

A query without a session is evaluated once against the current catalog
and not remembered.

Every request gets exactly one response carrying the request id:

	{"id": "2", "ok": true, "session": "<id>", "results": [{"l": "mgui.util", "c": "segment-prefix", "h": [{"s": 5, "e": 9}]}], "count": 1, "total": 1, "t_us": 85}

Failed requests have ok=false and an error message. Results carry the
label, the locator when there is one, the match class and the highlight
spans as byte offsets of the label.

The server's catalog can be replaced while it runs with Swap. Sessions
opened afterwards use the new catalog; existing sessions switch on their
next query.
*/
package ipc
