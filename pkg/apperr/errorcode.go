package apperr

// Predefined error codes used by the emitter and the CLI.
var (
	ErrorCodeInvalidConfig  = NewErrorCode("invalid_config", "Invalid configuration", 2)
	ErrorCodeValidationFail = NewErrorCode("validation_failed", "Validation failed", 2)
	ErrorCodeProviderFailed = NewErrorCode("provider_failed", "Unable to gather build metadata", 1)
	ErrorCodeOutputFailed   = NewErrorCode("output_failed", "Unable to write build instructions", 1)
	ErrorCodeInternal       = NewErrorCode("internal_error", "Internal error", 1)
)

// ErrorCode describes a canonical application error code and the process
// exit code the CLI uses for it.
type ErrorCode struct {
	code     string
	message  string
	exitCode int
}

func NewErrorCode(code, message string, exitCode int) *ErrorCode {
	return &ErrorCode{code: code, message: message, exitCode: exitCode}
}

func (ec *ErrorCode) Code() string    { return ec.code }
func (ec *ErrorCode) Message() string { return ec.message }
func (ec *ErrorCode) ExitCode() int   { return ec.exitCode }
