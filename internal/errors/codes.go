// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Message errors
	CodeMessageEmptyUnitID Code = "MESSAGE_EMPTY_UNIT_ID"
	CodeMessageEmptyText   Code = "MESSAGE_EMPTY_TEXT"

	// Baseline errors
	CodeBaselineEmptyUnitID Code = "BASELINE_EMPTY_UNIT_ID"
	CodeBaselineNotFound    Code = "BASELINE_NOT_FOUND"
	CodeBaselineStoreClosed Code = "BASELINE_STORE_CLOSED"
	CodeBaselineWriteFailed Code = "BASELINE_WRITE_FAILED"
	CodeBaselineReadFailed  Code = "BASELINE_READ_FAILED"
	CodeBaselineResetFailed Code = "BASELINE_RESET_FAILED"

	// Provider errors
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	CodeProviderBadResponse Code = "PROVIDER_BAD_RESPONSE"

	// Embedding errors
	CodeEmbeddingEmptyText Code = "EMBEDDING_EMPTY_TEXT"

	// Resonance errors
	CodeResonanceEmptyUnitID Code = "RESONANCE_EMPTY_UNIT_ID"
	CodeResonanceNoMission   Code = "RESONANCE_NO_MISSION"

	// Spool errors
	CodeSpoolUnreadable Code = "SPOOL_UNREADABLE"
	CodeSpoolBadBatch   Code = "SPOOL_BAD_BATCH"
)
