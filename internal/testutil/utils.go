package testutil

import (
	"log"
	"os"
	"testing"
)

// TestLogger returns a logger with the same prefix the server binary uses.
func TestLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(os.Stdout, "[chatdm] ", log.LstdFlags)
}
