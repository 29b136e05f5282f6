package testutil

import (
	"io"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
