// Package api defines the request and response messages of the splitledger.v1 RPC services.
//
// Messages are plain structs encoded as JSON by apiconnect.Codec. Monetary amounts
// are encoded as decimal strings ("12.50") so no precision is lost in transit.
package api
