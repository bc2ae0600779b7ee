// Package coinbooks provides the core bookkeeping engine for crypto-asset
// back offices. It records financial events as double-entry journal entries
// chained by cryptographic hashes, tracks acquisition lots to compute cost
// basis and realized gains on disposals, and reconciles recorded book
// balances against externally observed on-chain balances.
//
// The core functionalities include:
//   - Journal Management: an append-only, tamper-evident record of balanced
//     journal entries. Every entry's hash covers its content and the hash of
//     the previous entry, so any later modification is detectable.
//   - Lot Inventory: per-asset acquisition lots consumed by FIFO (or LIFO,
//     or explicitly targeted) disposals, with proportional cost-basis and
//     proceeds allocation performed in exact decimal arithmetic.
//   - Book Balances: point-in-time account balances replayed from the
//     journal's postings.
//   - Reconciliation: comparison of book balances with balances reported by
//     an external source, with threshold classification and alerting.
//   - Data Persistence: encoding and decoding of all records to and from
//     human-readable, version-controllable JSONL files.
//
// This package serves as the foundational logic for the `cbk` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package coinbooks
