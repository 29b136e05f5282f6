package middleware

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// RecoveryOption turns a handler panic into codes.Internal and logs the value.
func RecoveryOption(logger *logger.Logger) recovery.Option {
	return recovery.WithRecoveryHandler(func(p any) error {
		logger.Error("gRPC handler panicked", "panic", p)
		return status.Error(codes.Internal, "internal server error")
	})
}
