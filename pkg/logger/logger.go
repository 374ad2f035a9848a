package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/tilemenu/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	CommandKey   = "command"
	CommitKey    = "commit"
	VersionKey   = "version"
	BuildTimeKey = "build_time"
	GoVersionKey = "go_version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

var (
	once sync.Once

	// globalZapLogger backs Sync.
	globalZapLogger *zap.Logger

	globalLogrLogger *logr.Logger

	defaultNoopLogger logr.Logger = logr.Discard()
)

// Init initializes the global logger writing JSON to w. A nil w discards
// every entry, which is what the interactive terminal UI wants when no log
// file was requested. Only the first call has an effect.
func Init(w io.Writer, logLevel int8) *logr.Logger {
	once.Do(func() {
		if w == nil {
			globalLogrLogger = &defaultNoopLogger
			return
		}
		globalZapLogger = newZap(zapcore.AddSync(w), logLevel)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// Level converts the --debug flag into a zap level value. zapr maps logr
// V(n) to zap level -n, so debug enables V(1) and V(2) output.
func Level(debug bool) int8 {
	if debug {
		return -2
	}
	return int8(zapcore.InfoLevel)
}

func newZap(sink zapcore.WriteSyncer, logLevel int8) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(sink),
		zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
	).With(
		[]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
			zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
			zap.String(GoVersionKey, goVersion),
		},
	)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
}

// WithLogger returns a context carrying log. The original context is
// returned when it already carries the same logger.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger stored in ctx, then the global logger,
// then a no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	} else if log := globalLogrLogger; log != nil {
		return log
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	if globalZapLogger != nil {
		if err := globalZapLogger.Sync(); err != nil {
			if isIgnorableSyncError(err) {
				return
			}
			fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
		}
	}
}

// isIgnorableSyncError reports the errors Sync returns on pipes, TTYs and
// log files that were already closed.
// Windows consoles wrap ERROR_INVALID_HANDLE in *os.PathError, so the
// message is matched as well.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// WithValues returns a copy of lgr with keysAndValues attached.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
