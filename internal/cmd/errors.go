package cmd

// Exit codes.
const (
	// ExitOK means every record was evaluated or skipped.
	ExitOK = 0
	// ExitRecords means some records were rejected or failed.
	ExitRecords = 1
	// ExitFatal means the run could not start: bad config, policy or input.
	ExitFatal = 2
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
}

// NewExitError creates an ExitError.
func NewExitError(code int, msg string) *ExitError {
	return &ExitError{Code: code, Message: msg}
}

func (e *ExitError) Error() string {
	return e.Message
}
