package optimize

import (
	"go.uber.org/zap"

	"taskopt/internal/logging"
)

// SetLogger installs the *zap.Logger used to trace Fuse's accept/reject/
// rename decisions. A nil logger restores the no-op default. Disabled by
// default: importing this module produces no log output until a caller
// opts in.
func SetLogger(l *zap.Logger) { logging.Set(l) }
