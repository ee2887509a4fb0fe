package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"
)

// ChannelOverride replaces parts of a channel's built-in profile
type ChannelOverride struct {
	// Accounts maps an account tag (the text inside [..]) to a destination sheet
	Accounts map[string]string `yaml:"accounts"`
	// LookupDefault replaces the value written on a lookup miss
	LookupDefault *string `yaml:"lookup_default"`
}

// ChannelOverrides is keyed by channel name ("etc", "zigzag", ...)
type ChannelOverrides map[string]ChannelOverride

// LoadChannels reads channels.yaml. A missing file yields no overrides.
//
//	gmarket:
//	  accounts:
//	    오케이마트: OK,CL,BB
//	    새계정: OK,CL,BB
func LoadChannels(path string) (ChannelOverrides, error) {
	if path == "" {
		return ChannelOverrides{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ChannelOverrides{}, nil
		}
		return nil, fmt.Errorf("failed to read channel overrides: %w", err)
	}

	overrides := ChannelOverrides{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for name, o := range overrides {
		for tag, sheet := range o.Accounts {
			if tag == "" || sheet == "" {
				return nil, fmt.Errorf("channel %s: empty account mapping %q -> %q", name, tag, sheet)
			}
		}
	}
	return overrides, nil
}

// For returns the override for channel, if any
func (o ChannelOverrides) For(channel string) (ChannelOverride, bool) {
	v, ok := o[channel]
	return v, ok
}
