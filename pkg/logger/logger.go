package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process logger is built
type Config struct {
	Level       string
	ServiceName string
	Development bool
}

// Logger wraps zap.Logger
type Logger struct {
	*zap.Logger
}

var (
	global *Logger
	mu     sync.RWMutex
)

// New builds a logger without installing it globally
func New(cfg *Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(level))
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.ServiceName != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.ServiceName)))
	}

	return &Logger{Logger: zap.New(core, opts...)}, nil
}

// Init builds the process logger and installs it
func Init(cfg *Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	global = l
	mu.Unlock()
	zap.ReplaceGlobals(l.Logger)
	return nil
}

// Get returns the process logger, or a no-op logger before Init
func Get() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return NewNop()
	}
	return global
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// With returns a child logger carrying fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// Sync flushes the process logger
func Sync() error {
	return Get().Logger.Sync()
}
