package httputil

import (
	"io"

	"github.com/wonny/impactlab/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard)
}
