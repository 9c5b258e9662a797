package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Environ looks up an environment variable, os.LookupEnv satisfies it.
type Environ func(key string) (string, bool)

// MapEnviron serves lookups from a map.
func MapEnviron(m map[string]string) Environ {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type Diagnostic interface {
	ConfigFileLoaded(path string, profiles []string)
	ProfileSelected(name string)
	ProfileNotFound(name string)
	EnvOverride(variable string)
}

// Target is a parsed sendto expression.
type Target struct {
	// Direct is set when sendto named an endpoint rather than a profile.
	Direct   bool
	Endpoint string
	Key      string
	// HasKey is set when a direct target carried a key, possibly an empty one.
	HasKey  bool
	Profile string
}

// ParseTarget classifies sendto as either "endpoint[;key]" or a profile name.
func ParseTarget(sendto string) Target {
	if strings.HasPrefix(sendto, "http://") || strings.HasPrefix(sendto, "https://") {
		t := Target{Direct: true}
		if i := strings.IndexByte(sendto, ';'); i >= 0 {
			t.Endpoint, t.Key, t.HasKey = sendto[:i], sendto[i+1:], true
		} else {
			t.Endpoint = sendto
		}
		return t
	}
	return Target{Profile: sendto}
}

// RedactTarget hides the key of a direct sendto so it can be logged.
func RedactTarget(sendto string) string {
	t := ParseTarget(sendto)
	if !t.Direct || t.Key == "" {
		return sendto
	}
	return t.Endpoint + ";" + redacted
}

// settings is the mutable builder overrides are applied to.
type settings map[string]interface{}

type override func(s settings) error

func set(values map[string]interface{}) override {
	return func(s settings) error {
		for k, v := range values {
			s[k] = v
		}
		return nil
	}
}

func (s settings) freeze() (Options, error) {
	var o Options
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &o,
	})
	if err != nil {
		return Options{}, err
	}
	if err := dec.Decode(map[string]interface{}(s)); err != nil {
		return Options{}, errors.Wrap(err, "invalid option value")
	}
	return o, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"config_file": DefaultConfigFile,
		"profile":     "",
		"endpoint":    DefaultEndpoint,
		"key":         "",
		"sslverify":   true,
		"debug":       false,
		"timeout":     DefaultTimeout,
	}
}

type Resolver struct {
	env  Environ
	diag Diagnostic
}

func NewResolver(env Environ, d Diagnostic) *Resolver {
	if env == nil {
		env = os.LookupEnv
	}
	return &Resolver{
		env:  env,
		diag: d,
	}
}

// Resolve computes the delivery options for a sendto expression, see ParseTarget.
func Resolve(sendto string, env Environ) (Options, error) {
	return NewResolver(env, nil).Resolve(sendto)
}

// Resolve computes the delivery options for a sendto expression.
// The config file must be readable and well formed if it exists.
func (r *Resolver) Resolve(sendto string) (Options, error) {
	path, err := r.configPath()
	if err != nil {
		return Options{}, err
	}
	store, err := LoadStore(path)
	if err != nil {
		return Options{}, err
	}
	if r.diag != nil {
		r.diag.ConfigFileLoaded(path, store.Profiles())
	}

	s := settings{}
	for _, o := range []override{
		set(defaults()),
		set(store.Defaults()),
		r.target(sendto, store),
		r.environment(),
		set(map[string]interface{}{"config_file": path}),
	} {
		if err := o(s); err != nil {
			return Options{}, err
		}
	}

	opts, err := s.freeze()
	if err != nil {
		return Options{}, errors.Wrapf(err, "malformed config file %q", path)
	}
	return opts, nil
}

// target applies the sendto expression, either directly or through a profile section.
func (r *Resolver) target(sendto string, store *Store) override {
	return func(s settings) error {
		t := ParseTarget(sendto)
		if t.Direct {
			s["endpoint"] = t.Endpoint
			if t.HasKey {
				s["key"] = t.Key
			}
			s["profile"] = ""
			return nil
		}

		name := t.Profile
		if name == "" {
			name, _ = r.env(DefaultProfileEnv)
		}
		if name == "" {
			if p, ok := store.Defaults()["profile"].(string); ok {
				name = p
			}
		}

		values, ok := store.Profile(name)
		if name == "" || !ok {
			if name != "" && r.diag != nil {
				r.diag.ProfileNotFound(name)
			}
			s["profile"] = ""
			return nil
		}
		if r.diag != nil {
			r.diag.ProfileSelected(name)
		}
		for k, v := range values {
			s[k] = v
		}
		s["profile"] = name
		return nil
	}
}

func (r *Resolver) environment() override {
	return func(s settings) error {
		if v, ok := r.env(EndpointEnv); ok && v != "" {
			s["endpoint"] = v
			r.envOverride(EndpointEnv)
		}
		if v, ok := r.env(APIKeyEnv); ok && v != "" {
			s["key"] = v
			r.envOverride(APIKeyEnv)
		}
		return nil
	}
}

func (r *Resolver) envOverride(variable string) {
	if r.diag != nil {
		r.diag.EnvOverride(variable)
	}
}

func (r *Resolver) configPath() (string, error) {
	path, ok := r.env(ConfigFileEnv)
	if !ok || path == "" {
		path = DefaultConfigFile
	}
	return expandHome(path)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate home directory for config file")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
