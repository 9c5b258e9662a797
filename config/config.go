// Package config resolves where and how alerts are delivered.
//
// Settings are layered, later layers win:
//
//  1. built-in defaults
//  2. the DEFAULT section of the config file
//  3. the sendto target, either a direct "endpoint[;key]" or a profile name
//     whose "profile <name>" section is overlaid
//  4. the ALERTA_ENDPOINT and ALERTA_API_KEY environment variables
package config

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultEndpoint   = "http://localhost:8080"
	DefaultConfigFile = "~/.alerta.conf"
	DefaultTimeout    = 2
)

// Environment variables consulted while resolving.
const (
	ConfigFileEnv     = "ALERTA_CONF_FILE"
	DefaultProfileEnv = "ALERTA_DEFAULT_PROFILE"
	EndpointEnv       = "ALERTA_ENDPOINT"
	APIKeyEnv         = "ALERTA_API_KEY"
)

// Options are the resolved delivery settings.
type Options struct {
	ConfigFile string `mapstructure:"config_file" toml:"config_file"`
	// Profile is the name of the profile section that was applied, empty if none was.
	Profile   string `mapstructure:"profile" toml:"profile"`
	Endpoint  string `mapstructure:"endpoint" toml:"endpoint"`
	Key       string `mapstructure:"key" toml:"key"`
	SSLVerify bool   `mapstructure:"sslverify" toml:"sslverify"`
	Debug     bool   `mapstructure:"debug" toml:"debug"`
	// Timeout of the request to Alerta in seconds, fractions allowed.
	Timeout float64 `mapstructure:"timeout" toml:"timeout"`
}

func (o Options) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout * float64(time.Second))
}

const redacted = "<redacted>"

// Redacted returns a copy of o safe to print.
func (o Options) Redacted() Options {
	if o.Key != "" {
		o.Key = redacted
	}
	return o
}

func (o Options) Validate() error {
	if o.Endpoint == "" {
		return errors.New("must specify endpoint")
	}
	u, err := url.Parse(o.Endpoint)
	if err != nil {
		return errors.Wrapf(err, "invalid endpoint %q", o.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid endpoint %q: scheme must be http or https", o.Endpoint)
	}
	if o.Timeout <= 0 {
		return errors.Errorf("invalid timeout %v: must be positive", o.Timeout)
	}
	return nil
}

// options lists the recognized option names and whether they hold a boolean.
var options = []struct {
	name    string
	boolean bool
}{
	{name: "config_file"},
	{name: "profile"},
	{name: "endpoint"},
	{name: "key"},
	{name: "sslverify", boolean: true},
	{name: "debug", boolean: true},
	{name: "timeout"},
}
