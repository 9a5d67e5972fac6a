// Package fetch simulates parsing an external source (a URL) into a batch of
// post drafts.
//
// Sources come from a catalog written in CUE. The schema in schema.cue is
// unified with every catalog, so malformed posts (unknown platform, hashtag
// without the # marker, missing field) are rejected when the catalog loads,
// not when a fetch resolves.
//
// A fetch never fails on its input: an unknown source resolves to the
// catalog's default batch. The only error a fetch returns is the caller's
// context being cancelled while the simulated latency elapses.
package fetch
