// Package errors provides structured error handling for ccindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (cache files, definition store)
//   - 4XX: Validation errors
//   - 5XX: Internal errors (extraction, perception, worker chunks)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates build pipeline errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound       = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission     = "ERR_202_FILE_PERMISSION"
	ErrCodeCorruptIndex       = "ERR_205_CORRUPT_INDEX"
	ErrCodeExportFailed       = "ERR_207_EXPORT_FAILED"
	ErrCodeSourceInsufficient = "ERR_208_SOURCE_INSUFFICIENT"
	ErrCodeStoreFailed        = "ERR_209_STORE_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQuery = "ERR_403_INVALID_QUERY"
	ErrCodeNotFound     = "ERR_404_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal         = "ERR_501_INTERNAL"
	ErrCodeExtractionFailed = "ERR_506_EXTRACTION_FAILED"
	ErrCodePerceptionFailed = "ERR_507_PERCEPTION_FAILED"
	ErrCodeChunkFailed      = "ERR_508_CHUNK_FAILED"
	ErrCodeIdentityMismatch = "ERR_509_IDENTITY_MISMATCH"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "205" from "ERR_205_CORRUPT_INDEX"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Nothing in the build pipeline is fatal: per-item and per-chunk failures
// are logged and the build continues, so they are warnings.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeExtractionFailed, ErrCodePerceptionFailed, ErrCodeChunkFailed,
		ErrCodeIdentityMismatch, ErrCodeSourceInsufficient:
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode reports whether repeating the operation can succeed.
// A corrupt cache file is recovered by rebuilding without the cache.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeCorruptIndex, ErrCodeExportFailed, ErrCodeStoreFailed:
		return true
	default:
		return false
	}
}
