package alerta

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 2 * time.Second

type Config struct {
	// The Alerta API URL, alerts are posted to <url>/alert.
	URL string `toml:"url"`
	// The API key, sent as "Authorization: Key <key>" when set.
	Key string `toml:"key"`
	// Whether to skip the tls verification of the alerta host
	InsecureSkipVerify bool `toml:"insecure-skip-verify"`
	// Timeout of a single request.
	Timeout time.Duration `toml:"timeout"`
}

func NewConfig() Config {
	return Config{
		Timeout: defaultTimeout,
	}
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("must specify url")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrapf(err, "invalid url %q", c.URL)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid url %q: must be absolute", c.URL)
	}
	if c.Timeout < 0 {
		return errors.Errorf("invalid timeout %v", c.Timeout)
	}
	return nil
}
