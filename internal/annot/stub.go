package annot

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"signcheck/internal/qual"
)

// ErrUnknownKey marks stub files with keys outside [units.<name>].
var ErrUnknownKey = errors.New("unknown key")

type stubFile struct {
	Units map[string]map[string]qual.Qualifier `toml:"units"`
}

// LoadStubFile reads a TOML stub file of the form
//
//	[units.mix]
//	seed = "bitpattern"
//	return = "@bitpattern"
func LoadStubFile(path string) (MapStore, error) {
	var cfg stubFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return stubStore(path, cfg, meta)
}

// DecodeStub parses stub contents held in memory; name is used in errors.
func DecodeStub(name, data string) (MapStore, error) {
	var cfg stubFile
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	return stubStore(name, cfg, meta)
}

func stubStore(name string, cfg stubFile, meta toml.MetaData) (MapStore, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w %q", name, ErrUnknownKey, undecoded[0].String())
	}
	store := NewMapStore()
	for unit, vars := range cfg.Units {
		for v, q := range vars {
			store.Set(Key(unit, v), q)
		}
	}
	return store, nil
}

// LoadStubFiles loads paths in order; later files override earlier ones.
func LoadStubFiles(paths ...string) (MapStore, error) {
	store := NewMapStore()
	for _, p := range paths {
		s, err := LoadStubFile(p)
		if err != nil {
			return nil, err
		}
		store.Merge(s)
	}
	return store, nil
}
