// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

// Package storage persists fitted TF-IDF vector spaces in BadgerDB.
//
// A space is keyed by the checksum of the catalog it was fitted on, so a
// restarted process can reuse the fit as long as the catalog is unchanged.
// Snapshots are a pure optimization: a missing or corrupt snapshot only
// costs a refit and never changes ranking output.
//
// # Storage Format
//
// Each snapshot is stored as gzip-compressed JSON under "space:<checksum>",
// with its metadata under "meta:<checksum>". The metadata carries a SHA-256
// of the compressed payload, verified on load.
//
// # Thread Safety
//
// Store is safe for concurrent use; BadgerDB serializes transactions.
package storage
