// Package quote defines the quote record and the pure operations around it:
// normalization at ingestion boundaries, validation of user input, the derived
// category index, random selection for display, and JSON import/export.
//
// # Identity
//
// Every record carries an explicit ID. New records get a random UUID. Records
// ingested without one (legacy exports, older stored data) get a deterministic
// ID derived from their text and category via LegacyID, so re-importing the same legacy file
// always yields the same IDs and the reconciler can recognise them.
//
// # Timestamps
//
// UpdatedAt is encoded as Unix milliseconds in JSON. Input accepts either a
// number of milliseconds or an RFC3339 string; a missing value is defaulted by
// Normalize. Timestamps are kept at millisecond precision (see Stamp).
package quote
