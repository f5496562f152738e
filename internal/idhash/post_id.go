// Package idhash computes deterministic identifiers for records that
// arrive without one.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputePostID computes a deterministic post identifier.
// Formula: base58(SHA256(ticker|author|created_at|text)).
// The same observation always hashes to the same ID, so feed replays
// deduplicate via the store's duplicate-key handling.
func ComputePostID(ticker, author, createdAt, text string) string {
	data := fmt.Sprintf("%s|%s|%s|%s", ticker, author, createdAt, text)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeSnapshotID computes a deterministic velocity snapshot
// identifier from its ticker and hour boundary.
// Formula: base58(SHA256(ticker|hour_start_ms)).
func ComputeSnapshotID(ticker string, hourStartMs int64) string {
	data := fmt.Sprintf("%s|%d", ticker, hourStartMs)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
