package diagnostic

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Service struct {
	c      Config
	stdout io.Writer
	stderr io.Writer

	level  zap.AtomicLevel
	logger *zap.Logger
	closer io.Closer
}

func NewService(c Config, stdout, stderr io.Writer) *Service {
	return &Service{
		c:      c,
		stdout: stdout,
		stderr: stderr,
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
		logger: zap.NewNop(),
	}
}

func (s *Service) Open() error {
	if err := s.c.Validate(); err != nil {
		return err
	}

	var output io.Writer
	switch s.c.File {
	case "STDERR":
		output = s.stderr
	case "STDOUT":
		output = s.stdout
	default:
		dir := filepath.Dir(s.c.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "failed to create log directory %q", dir)
			}
		}
		f, err := os.OpenFile(s.c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %q", s.c.File)
		}
		output = f
		s.closer = f
	}

	if err := s.SetLevel(s.c.Level); err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch strings.ToLower(s.c.Encoding) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	s.logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(output), s.level))
	return nil
}

func (s *Service) Close() error {
	// Sync errors on terminals and pipes are expected and not worth reporting.
	_ = s.logger.Sync()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Service) Logger() *zap.Logger {
	return s.logger
}

func (s *Service) SetLevel(level string) error {
	l, err := parseLevel(level)
	if err != nil {
		return err
	}
	s.level.SetLevel(l)
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO":
		return zapcore.InfoLevel, nil
	case "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, errors.Errorf("unknown logging level %q", level)
	}
}

func (s *Service) NewZabbixHandler() *ZabbixHandler {
	return &ZabbixHandler{l: s.logger.With(zap.String("service", "zabbix"))}
}

func (s *Service) NewConfigHandler() *ConfigHandler {
	return &ConfigHandler{l: s.logger.With(zap.String("service", "config"))}
}

func (s *Service) NewAlertaHandler() *AlertaHandler {
	return &AlertaHandler{l: s.logger.With(zap.String("service", "alerta"))}
}

func (s *Service) NewCmdHandler() *CmdHandler {
	return &CmdHandler{l: s.logger.With(zap.String("service", "run"))}
}
