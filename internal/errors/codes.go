package errors

// ErrorCode identifies a class of failure.
type ErrorCode string

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Hardware control errors
	ErrNotFound        ErrorCode = "not_found"
	ErrPermission      ErrorCode = "permission_denied"
	ErrOutOfRange      ErrorCode = "value_out_of_range"
	ErrInvalidGovernor ErrorCode = "invalid_governor"
	ErrRead            ErrorCode = "read_failed"
	ErrWrite           ErrorCode = "write_failed"
	ErrPersistence     ErrorCode = "persistence_failed"
	ErrUnsupported     ErrorCode = "unsupported"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Process errors
	ErrAlreadyRunning ErrorCode = "already_running"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"

	// History errors
	ErrInitHistory   ErrorCode = "init_history_failed"
	ErrRecordHistory ErrorCode = "record_history_failed"
	ErrCloseHistory  ErrorCode = "close_history_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrNotFound:        "No supported device found",
	ErrPermission:      "Superuser privileges required",
	ErrOutOfRange:      "Value out of range",
	ErrInvalidGovernor: "Invalid CPU governor",
	ErrRead:            "Failed to read from sysfs",
	ErrWrite:           "Failed to write to sysfs",
	ErrPersistence:     "Failed to persist setting",
	ErrUnsupported:     "Not supported on this system",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrTimeout:         "Operation timed out",
	ErrInitHistory:     "Failed to initialize history",
	ErrRecordHistory:   "Failed to record history",
	ErrCloseHistory:    "Failed to close history",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
