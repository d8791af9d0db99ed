package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init 配置全局 zerolog，所有服务在启动时调用一次。
// 之后通过 Ctx(ctx) 获取带 trace_id 的 logger。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回 context 中的 logger；如果 context 中没有，则返回全局 logger。
// 配合 WithTraceID 使用，保证一条请求链路上的日志都带相同的 trace_id。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &zlog.Logger
	}
	return l
}

// WithTraceID 把带 trace_id 字段的 logger 存入 context。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return zlog.Logger.WithContext(ctx)
	}
	l := zlog.With().Str("trace_id", traceID).Logger()
	return l.WithContext(ctx)
}
