package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/username/bankconv/src/models"
	"github.com/username/bankconv/src/security/validation"
)

// ErrUnknownProfile is returned when a profile name is not registered.
var ErrUnknownProfile = errors.New("unknown profile")

var builtinProfiles = map[string]func() models.Profile{
	"intesa": models.IntesaSanPaolo,
}

// ProfileNames lists the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProfile returns a built-in profile by name.
func LookupProfile(name string) (models.Profile, error) {
	build, ok := builtinProfiles[name]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProfile, name, ProfileNames())
	}
	return build(), nil
}

// LoadProfileFile reads a JSON profile. A missing date_layout defaults to DD/MM/YYYY.
func LoadProfileFile(path string) (models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Profile{}, fmt.Errorf("failed to decode profile file %s: %w", path, err)
	}
	if p.DateLayout == "" {
		p.DateLayout = models.DefaultDateLayout
	}
	if err := validation.ValidateStruct(p); err != nil {
		return models.Profile{}, fmt.Errorf("invalid profile file %s: %w", path, err)
	}
	return p, nil
}

// ResolveProfile picks the profile file when path is set, otherwise the named built-in profile.
func ResolveProfile(name, path string) (models.Profile, error) {
	if path != "" {
		return LoadProfileFile(path)
	}
	return LookupProfile(name)
}
