package config

import (
	"fmt"

	"github.com/chrissnell/wxcore/internal/errcode"
)

const (
	DeviceTypeDavis  = "davis"
	DeviceTypeAnalog = "analog"
)

func applyDefaults(c *ConfigData) {
	if c.History.Capacity == 0 {
		c.History.Capacity = DefaultHistoryCapacity
	}
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.Type == DeviceTypeDavis {
			if d.LoopCount == 0 {
				d.LoopCount = DefaultLoopCount
			}
			if d.SerialDevice != "" && d.Baud == 0 {
				d.Baud = DefaultBaud
			}
		}
	}
}

// Validate checks a loaded configuration. Every problem is reported as an
// errcode.InvalidArgument error naming the offending setting.
func Validate(c *ConfigData) error {
	if c.History.Capacity < 1 {
		return invalid("history.capacity must be at least 1, got %d", c.History.Capacity)
	}
	if _, err := c.History.MaxAgeDuration(); err != nil {
		return invalid("history.max_age: %v", err)
	}
	if d, err := c.History.EvictIntervalDuration(); err != nil || d <= 0 {
		return invalid("history.evict_interval must be a positive duration, got %q", c.History.EvictInterval)
	}

	seen := make(map[string]bool)
	for _, d := range c.Devices {
		if d.Name == "" {
			return invalid("device name is required")
		}
		if seen[d.Name] {
			return invalid("device [%s] is defined more than once", d.Name)
		}
		seen[d.Name] = true

		switch d.Type {
		case DeviceTypeDavis:
			if d.SerialDevice == "" && (d.Hostname == "" || d.Port == "") {
				return invalid("station [%s] must define either a serial device or hostname+port", d.Name)
			}
			if d.LoopCount < 1 {
				return invalid("station [%s] loop_count must be at least 1", d.Name)
			}
		case DeviceTypeAnalog:
			if d.TemperatureVoltageFile == "" || d.HumidityVoltageFile == "" {
				return invalid("station [%s] must define temperature_voltage_file and humidity_voltage_file", d.Name)
			}
			if p, err := d.PollIntervalDuration(); err != nil || p <= 0 {
				return invalid("station [%s] poll_interval must be a positive duration, got %q", d.Name, d.PollInterval)
			}
		default:
			return errcode.New(errcode.UnsupportedStation, "config", fmt.Sprintf("device [%s] has unknown type %q", d.Name, d.Type))
		}
	}

	return nil
}

func findDevice(devices []DeviceData, name string) (*DeviceData, error) {
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, invalid("device [%s] not found in configuration", name)
}

func invalid(format string, args ...interface{}) error {
	return errcode.New(errcode.InvalidArgument, "config", fmt.Sprintf(format, args...))
}
