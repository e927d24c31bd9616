package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

//go:embed profiles.yaml
var builtinProfiles []byte

// Registry holds compiled profiles by name.
type Registry struct {
	profiles map[string]*Profile
}

// LoadBuiltin compiles the profiles shipped with the binary.
func LoadBuiltin() (*Registry, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(builtinProfiles)); err != nil {
		return nil, fmt.Errorf("failed to read built-in profiles: %w", err)
	}
	return fromViper(v)
}

// LoadFile compiles the profiles in a YAML (or any viper-supported) file.
func LoadFile(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}
	return fromViper(v)
}

// Load returns the built-in profiles, overlaid with the ones in path when
// path is not empty.
func Load(path string) (*Registry, error) {
	reg, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return reg, nil
	}
	custom, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	reg.Merge(custom)
	return reg, nil
}

// NewRegistry compiles specs directly.
func NewRegistry(specs ...ProfileSpec) (*Registry, error) {
	reg := &Registry{profiles: make(map[string]*Profile, len(specs))}
	for _, spec := range specs {
		profile, err := Compile(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := reg.profiles[profile.Name]; dup {
			return nil, ErrProfileConfig{Profile: profile.Name, Reason: "defined more than once"}
		}
		reg.profiles[profile.Name] = profile
	}
	return reg, nil
}

func fromViper(v *viper.Viper) (*Registry, error) {
	var specs []ProfileSpec
	if err := v.UnmarshalKey("profiles", &specs); err != nil {
		return nil, ErrProfileConfig{Reason: "failed to decode: " + err.Error()}
	}
	return NewRegistry(specs...)
}

// Get returns the named profile
func (r *Registry) Get(name string) (*Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return nil, ErrUnknownProfile{Name: name}
	}
	return p, nil
}

// Names lists loaded profiles in name order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns loaded profiles in name order
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, name := range r.Names() {
		out = append(out, r.profiles[name])
	}
	return out
}

// Merge adds the profiles of other, replacing same-named ones.
func (r *Registry) Merge(other *Registry) {
	for name, p := range other.profiles {
		r.profiles[name] = p
	}
}
