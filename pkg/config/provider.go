package config

import "time"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetDevice(name string) (*DeviceData, error)
	GetHistoryConfig() (*HistoryData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices []DeviceData `json:"devices"`
	History HistoryData  `json:"history,omitempty"`
	Admin   AdminData    `json:"admin,omitempty"`
}

// DeviceData holds configuration specific to data collection devices
type DeviceData struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Enabled      bool   `json:"enabled"`
	Hostname     string `json:"hostname,omitempty"`
	Port         string `json:"port,omitempty"`
	SerialDevice string `json:"serial_device,omitempty"`
	Baud         int    `json:"baud,omitempty"`

	// Davis LOOP settings
	LoopCount   int    `json:"loop_count,omitempty"`
	VerifyCRC   bool   `json:"verify_crc,omitempty"`
	CaptureFile string `json:"capture_file,omitempty"`

	// Analog sensor settings
	TemperatureVoltageFile string `json:"temperature_voltage_file,omitempty"`
	HumidityVoltageFile    string `json:"humidity_voltage_file,omitempty"`
	PollInterval           string `json:"poll_interval,omitempty"`
}

// HistoryData configures the bounded reading history
type HistoryData struct {
	Capacity      int    `json:"capacity,omitempty"`
	MaxAge        string `json:"max_age,omitempty"`
	EvictInterval string `json:"evict_interval,omitempty"`
}

// AdminData configures the metrics/health HTTP endpoint
type AdminData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
}

const (
	DefaultHistoryCapacity = 10
	DefaultLoopCount       = 20
	DefaultBaud            = 19200
	DefaultPollInterval    = time.Minute
	DefaultEvictInterval   = time.Minute
)

// MaxAgeDuration returns the configured maximum reading age, or 0 when
// age-based eviction is disabled.
func (h HistoryData) MaxAgeDuration() (time.Duration, error) {
	return parseOptionalDuration(h.MaxAge, 0)
}

// EvictIntervalDuration returns how often age eviction runs
func (h HistoryData) EvictIntervalDuration() (time.Duration, error) {
	return parseOptionalDuration(h.EvictInterval, DefaultEvictInterval)
}

// PollIntervalDuration returns how often an analog device is sampled
func (d DeviceData) PollIntervalDuration() (time.Duration, error) {
	return parseOptionalDuration(d.PollInterval, DefaultPollInterval)
}

func parseOptionalDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
