package analog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VoltageSource supplies one temperature/humidity voltage pair per call
type VoltageSource interface {
	ReadVoltages() (temperature, humidity float32, err error)
}

// FileVoltageSource reads each voltage from a text file holding a single
// decimal value in volts, as written by an ADC driver or a sampling script.
type FileVoltageSource struct {
	TemperatureFile string
	HumidityFile    string
}

// ReadVoltages implements VoltageSource
func (f FileVoltageSource) ReadVoltages() (float32, float32, error) {
	t, err := readVoltage(f.TemperatureFile)
	if err != nil {
		return 0, 0, err
	}
	h, err := readVoltage(f.HumidityFile)
	if err != nil {
		return 0, 0, err
	}
	return t, h, nil
}

func readVoltage(path string) (float32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading voltage: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 32)
	if err != nil {
		return 0, fmt.Errorf("parsing voltage in %s: %w", path, err)
	}
	return float32(v), nil
}
