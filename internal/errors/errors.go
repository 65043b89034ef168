package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
)

// Format renders an error for the terminal with an "Error: " prefix. An
// expired session points the operator at the login command and an
// unreachable API is called out as such.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsAuthentication(err) {
		return fmt.Sprintf("Error: session expired or invalid, run '%s login' (%v)", constants.AppName, err)
	}
	if remote, ok := AsRemote(err); ok && remote.StatusCode == 0 && remote.Err != nil {
		return fmt.Sprintf("Error: API unreachable: %v", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
