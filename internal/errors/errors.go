package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/logger"
)

// ReminderError is a failed reminder outcome surfaced to the terminal.
type ReminderError struct {
	Reason  constants.Reason
	Message string
}

func (e *ReminderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reminder %s", e.Reason)
	}
	return fmt.Sprintf("reminder %s: %s", e.Reason, e.Message)
}

// Hint returns a follow-up suggestion for the reason, or "" when there is none.
func (e *ReminderError) Hint() string {
	switch e.Reason {
	case constants.ReasonUnsupported:
		return "reminders need an interactive terminal and the dayglow agent"
	case constants.ReasonInsecure:
		return "use an https API URL or a loopback host"
	case constants.ReasonDenied:
		return "allow notifications with 'dayglow reminder enable' from an interactive terminal"
	case constants.ReasonUnavailable:
		return "start dayglow-agent and try again"
	case constants.ReasonBackendFailed:
		return "the local subscription may be gone while the server still has it; retry 'dayglow reminder disable'"
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error, prints it with any hint, and exits with code 1
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	if re, ok := err.(*ReminderError); ok {
		if hint := re.Hint(); hint != "" {
			fmt.Fprintf(os.Stderr, "       %s\n", hint)
		}
	}
	os.Exit(1)
}
