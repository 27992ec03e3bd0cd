// Package ticketsearch is the embedded client for the indexing and search
// engine. Trackers link it directly instead of calling the HTTP API: the
// client connects to the store, ensures the schema, and exposes publish,
// search, and resync operations over the same pipeline the server runs.
package ticketsearch
