package config

import (
	"os"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

const (
	DefaultSection = "DEFAULT"
	profilePrefix  = "profile "
)

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		// API keys may contain ';' or '#'.
		IgnoreInlineComment: true,
		// Option names are matched as lower case, "Endpoint" sets endpoint.
		InsensitiveKeys: true,
	}
}

// Store is the INI config file: a DEFAULT section and any number of "profile <name>" sections.
type Store struct {
	path string
	file *ini.File
}

// LoadStore reads the config file at path. A file that does not exist yields an empty store,
// a file that exists but cannot be read or parsed is an error.
func LoadStore(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Store{path: path, file: ini.Empty()}, nil
	}
	f, err := ini.LoadSources(loadOptions(), path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}
	return &Store{path: path, file: f}, nil
}

// LoadStoreData parses config file content held in memory.
func LoadStoreData(data []byte) (*Store, error) {
	f, err := ini.LoadSources(loadOptions(), data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse config data")
	}
	return &Store{file: f}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) HasProfile(name string) bool {
	_, err := s.file.GetSection(profilePrefix + name)
	return err == nil
}

// Profiles returns the names of the profile sections in file order.
func (s *Store) Profiles() []string {
	var names []string
	for _, sec := range s.file.Sections() {
		if n := sec.Name(); strings.HasPrefix(n, profilePrefix) {
			names = append(names, strings.TrimPrefix(n, profilePrefix))
		}
	}
	return names
}

// Defaults returns the recognized options set in the DEFAULT section.
func (s *Store) Defaults() map[string]interface{} {
	return s.values(DefaultSection)
}

// Profile returns the recognized options set in the named profile section.
func (s *Store) Profile(name string) (map[string]interface{}, bool) {
	if !s.HasProfile(name) {
		return nil, false
	}
	return s.values(profilePrefix + name), true
}

// values collects the recognized options a section defines itself.
// Keys go-ini would inherit from a parent section ("profile a" for "profile a.b") are ignored.
// Boolean coercion is attempted for boolean options, anything else keeps its text.
func (s *Store) values(section string) map[string]interface{} {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return map[string]interface{}{}
	}
	own := make(map[string]*ini.Key)
	for _, k := range sec.Keys() {
		own[k.Name()] = k
	}
	vals := make(map[string]interface{})
	for _, opt := range options {
		k, ok := own[opt.name]
		if !ok {
			continue
		}
		var v interface{} = k.String()
		if opt.boolean {
			if b, err := k.Bool(); err == nil {
				v = b
			}
		}
		vals[opt.name] = v
	}
	return vals
}
