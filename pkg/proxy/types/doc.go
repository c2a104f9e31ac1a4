// Package types defines the JSON bodies exchanged on the gateway's HTTP
// surface: RPC request envelopes, upload results, endpoint status and the
// error envelope shared by every failure response.
package types
