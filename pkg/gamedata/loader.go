package gamedata

import "fmt"

// DefaultVersion is the block table used when no other version is requested.
const DefaultVersion = "classic"

var versions = map[string]func() BlockRegistry{}

func Register(name string, factory func() BlockRegistry) {
	versions[name] = factory
}

func Load(name string) (BlockRegistry, error) {
	f, ok := versions[name]
	if !ok {
		return nil, fmt.Errorf("unknown version: %s", name)
	}
	return f(), nil
}

func RegisteredVersions() []string {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	return names
}
