package logger

import (
	"context"

	"go.uber.org/zap"
)

// EventInfo identifies the marketplace log being processed
type EventInfo struct {
	ChainID     uint64
	Market      string
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
}

// Fields returns the event coordinates as zap fields
func (i EventInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("chainID", i.ChainID),
		zap.String("market", i.Market),
		zap.String("txHash", i.TxHash),
		zap.Uint64("blockNumber", i.BlockNumber),
		zap.Uint("logIndex", i.LogIndex),
	}
}

// FromEvent returns a context logger tagged with the event coordinates
func FromEvent(ctx context.Context, info EventInfo) *zap.Logger {
	return FromContext(ctx).With(info.Fields()...)
}

// InfoEvent logs an info message tagged with the event coordinates
func InfoEvent(ctx context.Context, info EventInfo, msg string, fields ...zap.Field) {
	FromEvent(ctx, info).Info(msg, fields...)
}

// WarnEvent logs a warning message tagged with the event coordinates
func WarnEvent(ctx context.Context, info EventInfo, msg string, fields ...zap.Field) {
	FromEvent(ctx, info).Warn(msg, fields...)
}

// DebugEvent logs a debug message tagged with the event coordinates
func DebugEvent(ctx context.Context, info EventInfo, msg string, fields ...zap.Field) {
	FromEvent(ctx, info).Debug(msg, fields...)
}
