package config

import (
	"errors"
	"fmt"
	"time"
)

// Profile names.
const (
	ProfileNormal = "normal"
	ProfileFast   = "fast"
)

// Profile bundles the speed/thoroughness knobs that differ between a
// normal and a fast run.
type Profile struct {
	// ServiceDetection adds nmap -sV.
	ServiceDetection bool `mapstructure:"service_detection" yaml:"service_detection"`
	// FastPreset scans nmap's top ports (-F) instead of Ports.
	FastPreset       bool   `mapstructure:"fast_preset" yaml:"fast_preset"`
	Ports            string `mapstructure:"ports" yaml:"ports"`
	SubfinderTimeout string `mapstructure:"subfinder_timeout" yaml:"subfinder_timeout"`
	ProbeTimeout     string `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	ProbeWorkers     int    `mapstructure:"probe_workers" yaml:"probe_workers"`
}

// ProfilesConfig holds the two built-in run profiles
type ProfilesConfig struct {
	Normal Profile `mapstructure:"normal" yaml:"normal"`
	Fast   Profile `mapstructure:"fast" yaml:"fast"`
}

// GetProfile returns the named profile.
func (c *Config) GetProfile(name string) (Profile, error) {
	switch name {
	case ProfileNormal, "":
		return c.Profiles.Normal, nil
	case ProfileFast:
		return c.Profiles.Fast, nil
	default:
		return Profile{}, fmt.Errorf("unknown profile: %s (available: %s, %s)", name, ProfileNormal, ProfileFast)
	}
}

// ProfileName maps the --fast flag to a profile name.
func ProfileName(fast bool) string {
	if fast {
		return ProfileFast
	}
	return ProfileNormal
}

// SubfinderTimeoutOr parses SubfinderTimeout with a fallback.
func (p Profile) SubfinderTimeoutOr(fallback time.Duration) time.Duration {
	return Duration(p.SubfinderTimeout, fallback)
}

// ProbeTimeoutOr parses ProbeTimeout with a fallback.
func (p Profile) ProbeTimeoutOr(fallback time.Duration) time.Duration {
	return Duration(p.ProbeTimeout, fallback)
}

func (p Profile) validate(key string) error {
	var errs []error

	if p.ProbeWorkers <= 0 {
		errs = append(errs, fmt.Errorf("%s.probe_workers must be positive", key))
	}
	if err := checkDuration(key+".subfinder_timeout", p.SubfinderTimeout); err != nil {
		errs = append(errs, err)
	}
	if err := checkDuration(key+".probe_timeout", p.ProbeTimeout); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
