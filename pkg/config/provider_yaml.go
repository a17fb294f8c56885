package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// DeviceYAML is the on-disk form of DeviceData
type DeviceYAML struct {
	Name                   string `yaml:"name"`
	Type                   string `yaml:"type,omitempty"`
	Enabled                *bool  `yaml:"enabled,omitempty"`
	Hostname               string `yaml:"hostname,omitempty"`
	Port                   string `yaml:"port,omitempty"`
	SerialDevice           string `yaml:"serial_device,omitempty"`
	Baud                   int    `yaml:"baud,omitempty"`
	LoopCount              int    `yaml:"loop_count,omitempty"`
	VerifyCRC              bool   `yaml:"verify_crc,omitempty"`
	CaptureFile            string `yaml:"capture_file,omitempty"`
	TemperatureVoltageFile string `yaml:"temperature_voltage_file,omitempty"`
	HumidityVoltageFile    string `yaml:"humidity_voltage_file,omitempty"`
	PollInterval           string `yaml:"poll_interval,omitempty"`
}

// HistoryYAML is the on-disk form of HistoryData
type HistoryYAML struct {
	Capacity      int    `yaml:"capacity,omitempty"`
	MaxAge        string `yaml:"max_age,omitempty"`
	EvictInterval string `yaml:"evict_interval,omitempty"`
}

// AdminYAML is the on-disk form of AdminData
type AdminYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Devices []DeviceYAML `yaml:"devices"`
		History HistoryYAML  `yaml:"history,omitempty"`
		Admin   AdminYAML    `yaml:"admin,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Devices: make([]DeviceData, len(yamlConfig.Devices)),
		History: HistoryData{
			Capacity:      yamlConfig.History.Capacity,
			MaxAge:        yamlConfig.History.MaxAge,
			EvictInterval: yamlConfig.History.EvictInterval,
		},
		Admin: AdminData{
			ListenAddr: yamlConfig.Admin.ListenAddr,
		},
	}

	for i, device := range yamlConfig.Devices {
		// devices are enabled unless explicitly switched off
		enabled := true
		if device.Enabled != nil {
			enabled = *device.Enabled
		}

		config.Devices[i] = DeviceData{
			Name:                   device.Name,
			Type:                   device.Type,
			Enabled:                enabled,
			Hostname:               device.Hostname,
			Port:                   device.Port,
			SerialDevice:           device.SerialDevice,
			Baud:                   device.Baud,
			LoopCount:              device.LoopCount,
			VerifyCRC:              device.VerifyCRC,
			CaptureFile:            device.CaptureFile,
			TemperatureVoltageFile: device.TemperatureVoltageFile,
			HumidityVoltageFile:    device.HumidityVoltageFile,
			PollInterval:           device.PollInterval,
		}
	}

	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDevices returns device configurations
func (y *YAMLProvider) GetDevices() ([]DeviceData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Devices, nil
}

// GetDevice returns a single device by name
func (y *YAMLProvider) GetDevice(name string) (*DeviceData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return findDevice(config.Devices, name)
}

// GetHistoryConfig returns the history configuration
func (y *YAMLProvider) GetHistoryConfig() (*HistoryData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.History, nil
}

// IsReadOnly returns true since YAML files are treated as read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
