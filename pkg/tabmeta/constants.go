package tabmeta

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Extraction completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitDocumentError   = 11 // Source document missing or malformed
	ExitRunFailed       = 12 // One or more tables failed to persist
	ExitConnectionError = 13 // Failed to connect to PostgreSQL sink
)

const (
	// DefaultOutputDirectory is where table files are written when the
	// config does not say otherwise.
	DefaultOutputDirectory = "exports"

	// DefaultDateFormat is the Go reference layout applied to parsed
	// timestamps on output.
	DefaultDateFormat = "2006-01-02 15:04:05"

	// TableFileExtension is the extension of persisted table files.
	TableFileExtension = ".csv"

	// ConnectionIDPrefix prefixes synthetic connection identifiers.
	// Synthetic ids are only stable within a single run.
	ConnectionIDPrefix = "conn_"
)
