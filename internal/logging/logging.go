package logging

import "go.uber.org/zap"

// New builds the process logger: production JSON output in release mode,
// console output otherwise.
func New(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
