package diagnostic

import (
	"fmt"
	"runtime"

	"github.com/alerta/zabbix-alerta/alert"
	"github.com/alerta/zabbix-alerta/config"
	"go.uber.org/zap"
)

// Zabbix handler

type ZabbixHandler struct {
	l *zap.Logger
}

func (h *ZabbixHandler) Assign(macro string, v alert.Value) {
	h.l.Debug(fmt.Sprintf("%s -> %s", macro, v))
}

func (h *ZabbixHandler) SkippedLine(line string) {
	h.l.Debug("skipping line without assignment", zap.String("line", line))
}

func (h *ZabbixHandler) MalformedLine(line string, err error) {
	h.l.Warn("skipping malformed line", zap.String("line", line), zap.Error(err))
}

// Config handler

type ConfigHandler struct {
	l *zap.Logger
}

func (h *ConfigHandler) ConfigFileLoaded(path string, profiles []string) {
	h.l.Debug("loaded config file", zap.String("path", path), zap.Strings("profiles", profiles))
}

func (h *ConfigHandler) ProfileSelected(name string) {
	h.l.Debug("using profile", zap.String("profile", name))
}

func (h *ConfigHandler) ProfileNotFound(name string) {
	h.l.Warn("profile not found in config file, using defaults", zap.String("profile", name))
}

func (h *ConfigHandler) EnvOverride(variable string) {
	h.l.Debug("environment variable overrides config", zap.String("variable", variable))
}

// Alerta handler

type AlertaHandler struct {
	l *zap.Logger
}

func (h *AlertaHandler) Sending(url string, body []byte) {
	h.l.Debug("posting alert", zap.String("url", url), zap.ByteString("body", body))
}

func (h *AlertaHandler) Sent(id string, statusCode int) {
	h.l.Debug("alert accepted", zap.String("id", id), zap.Int("code", statusCode))
}

func (h *AlertaHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

// Cmd handler

type CmdHandler struct {
	l *zap.Logger
}

func (h *CmdHandler) Starting(version, commit string) {
	h.l.Debug("zabbix-alerta starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("go", runtime.Version()),
	)
}

func (h *CmdHandler) Invoked(sendto, summary, body string) {
	h.l.Debug("invoked", zap.String("sendto", config.RedactTarget(sendto)), zap.String("summary", summary), zap.String("body", body))
}

func (h *CmdHandler) Resolved(o config.Options) {
	o = o.Redacted()
	h.l.Debug("resolved options",
		zap.String("config_file", o.ConfigFile),
		zap.String("profile", o.Profile),
		zap.String("endpoint", o.Endpoint),
		zap.String("key", o.Key),
		zap.Bool("sslverify", o.SSLVerify),
		zap.Float64("timeout", o.Timeout),
	)
}

func (h *CmdHandler) Alert(r *alert.Record) {
	h.l.Info("alert", zap.Reflect("alert", r))
}

func (h *CmdHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}
