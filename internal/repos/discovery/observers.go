package discovery

import "go.uber.org/zap"

const (
	directoryScannedMessageConstant = "scanning directory"
	directoryPathFieldConstant      = "directory"
	depthFieldConstant              = "depth"
)

// LoggingTraversalObserver records every scanned directory at debug level.
type LoggingTraversalObserver struct {
	logger *zap.Logger
}

// NewLoggingTraversalObserver constructs an observer; a nil logger discards events.
func NewLoggingTraversalObserver(logger *zap.Logger) *LoggingTraversalObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingTraversalObserver{logger: logger}
}

// DirectoryScanned implements TraversalObserver.
func (observer *LoggingTraversalObserver) DirectoryScanned(directoryPath string, depth int) {
	observer.logger.Debug(directoryScannedMessageConstant, zap.String(directoryPathFieldConstant, directoryPath), zap.Int(depthFieldConstant, depth))
}
