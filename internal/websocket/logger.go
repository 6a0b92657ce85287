package websocket

import (
	"teams-pollbot/pkg/logger"

	"go.uber.org/zap"
)

// FeedLogger provides structured logging for feed connection events
type FeedLogger struct {
	logger *zap.Logger
}

func NewFeedLogger(l *logger.Logger) *FeedLogger {
	if l == nil {
		l = logger.NewNop()
	}
	return &FeedLogger{logger: l.Logger.With(zap.String("component", "websocket"))}
}

func (l *FeedLogger) Info(event, clientID, channel string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("client_id", clientID),
		zap.String("channel", channel),
	}, fields...)
	l.logger.Info("websocket_event", allFields...)
}

func (l *FeedLogger) Warn(event, clientID, channel string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("client_id", clientID),
		zap.String("channel", channel),
		zap.Error(err),
	}, fields...)
	l.logger.Warn("websocket_warning", allFields...)
}
