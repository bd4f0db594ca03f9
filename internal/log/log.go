// Package log builds zap loggers from configuration and holds the process
// global logger.
package log

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ZapProperties records the logger's core, sink, and level so the level can
// be changed at runtime.
type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

var (
	globalMu sync.RWMutex
	globalL  = zap.NewNop()
	globalS  = globalL.Sugar()
	globalP  = &ZapProperties{Level: zap.NewAtomicLevel()}
)

// InitLogger builds a logger from cfg, writing to the configured file sink
// or to stderr when no file is configured.
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	var output zapcore.WriteSyncer
	if len(cfg.File.Filename) > 0 {
		lg, err := initFileLog(&cfg.File)
		if err != nil {
			return nil, nil, err
		}
		output = zapcore.AddSync(lg)
	} else {
		output = zapcore.AddSync(os.Stderr)
	}
	return InitLoggerWithWriteSyncer(cfg, output, opts...)
}

// InitLoggerWithWriteSyncer builds a logger from cfg writing to output.
func InitLoggerWithWriteSyncer(cfg *Config, output zapcore.WriteSyncer, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, errors.Wrapf(err, "unknown log level %q", cfg.Level)
	}

	encoder, err := newEncoder(cfg)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(encoder, output, level)
	opts = append(cfg.buildOptions(output), opts...)
	lg := zap.New(core, opts...)
	props := &ZapProperties{
		Core:   core,
		Syncer: output,
		Level:  level,
	}
	return lg, props, nil
}

func newEncoder(cfg *Config) (zapcore.Encoder, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(defaultLogTimeFormat)
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.DisableTimestamp {
		encCfg.TimeKey = ""
	}

	switch cfg.Format {
	case "json":
		return zapcore.NewJSONEncoder(encCfg), nil
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg), nil
	default:
		return nil, errors.Errorf("unsupported log format %q", cfg.Format)
	}
}

// initFileLog builds the rotating file sink.
func initFileLog(cfg *FileConfig) (*lumberjack.Logger, error) {
	if st, err := os.Stat(cfg.Filename); err == nil && st.IsDir() {
		return nil, errors.New("can't use directory as log file name")
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

// L returns the global logger.
func L() *zap.Logger {
	globalMu.RLock()
	l := globalL
	globalMu.RUnlock()
	return l
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	globalMu.RLock()
	s := globalS
	globalMu.RUnlock()
	return s
}

// ReplaceGlobals replaces the global logger and its properties.
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	globalMu.Lock()
	globalL = logger
	globalS = logger.Sugar()
	globalP = props
	globalMu.Unlock()
}

// SetLevel alters the level of the global logger.
func SetLevel(l zapcore.Level) {
	globalMu.RLock()
	globalP.Level.SetLevel(l)
	globalMu.RUnlock()
}
