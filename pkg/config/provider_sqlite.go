package config

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS devices (
	name                     TEXT PRIMARY KEY,
	type                     TEXT NOT NULL,
	enabled                  INTEGER NOT NULL DEFAULT 1,
	hostname                 TEXT,
	port                     TEXT,
	serial_device            TEXT,
	baud                     INTEGER,
	loop_count               INTEGER,
	verify_crc               INTEGER NOT NULL DEFAULT 0,
	capture_file             TEXT,
	temperature_voltage_file TEXT,
	humidity_voltage_file    TEXT,
	poll_interval            TEXT
);
CREATE TABLE IF NOT EXISTS history (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	capacity       INTEGER,
	max_age        TEXT,
	evict_interval TEXT
);
CREATE TABLE IF NOT EXISTS admin (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	listen_addr TEXT
);
`

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// InitSchema creates the configuration tables if they do not exist
func (s *SQLiteProvider) InitSchema() error {
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	devices, err := s.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	config.Devices = devices

	history, err := s.GetHistoryConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load history config: %w", err)
	}
	config.History = *history

	admin, err := s.getAdminConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load admin config: %w", err)
	}
	config.Admin = *admin

	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDevices returns device configurations from the database
func (s *SQLiteProvider) GetDevices() ([]DeviceData, error) {
	query := `
		SELECT name, type, enabled, hostname, port, serial_device, baud,
		       loop_count, verify_crc, capture_file,
		       temperature_voltage_file, humidity_voltage_file, poll_interval
		FROM devices
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceData
	for rows.Next() {
		var device DeviceData
		var hostname, port, serialDevice, captureFile sql.NullString
		var tempFile, humFile, pollInterval sql.NullString
		var baud, loopCount sql.NullInt64

		err := rows.Scan(
			&device.Name, &device.Type, &device.Enabled, &hostname, &port,
			&serialDevice, &baud, &loopCount, &device.VerifyCRC, &captureFile,
			&tempFile, &humFile, &pollInterval,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		// NULL columns become zero values
		device.Hostname = hostname.String
		device.Port = port.String
		device.SerialDevice = serialDevice.String
		device.CaptureFile = captureFile.String
		device.TemperatureVoltageFile = tempFile.String
		device.HumidityVoltageFile = humFile.String
		device.PollInterval = pollInterval.String
		device.Baud = int(baud.Int64)
		device.LoopCount = int(loopCount.Int64)

		devices = append(devices, device)
	}

	return devices, rows.Err()
}

// GetDevice returns a single device by name
func (s *SQLiteProvider) GetDevice(name string) (*DeviceData, error) {
	devices, err := s.GetDevices()
	if err != nil {
		return nil, err
	}
	return findDevice(devices, name)
}

// GetHistoryConfig returns the history configuration. A missing row yields
// an empty HistoryData so defaults apply.
func (s *SQLiteProvider) GetHistoryConfig() (*HistoryData, error) {
	var capacity sql.NullInt64
	var maxAge, evictInterval sql.NullString

	err := s.db.QueryRow(`SELECT capacity, max_age, evict_interval FROM history WHERE id = 1`).
		Scan(&capacity, &maxAge, &evictInterval)
	if errors.Is(err, sql.ErrNoRows) {
		return &HistoryData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history config: %w", err)
	}

	return &HistoryData{
		Capacity:      int(capacity.Int64),
		MaxAge:        maxAge.String,
		EvictInterval: evictInterval.String,
	}, nil
}

func (s *SQLiteProvider) getAdminConfig() (*AdminData, error) {
	var listenAddr sql.NullString

	err := s.db.QueryRow(`SELECT listen_addr FROM admin WHERE id = 1`).Scan(&listenAddr)
	if errors.Is(err, sql.ErrNoRows) {
		return &AdminData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin config: %w", err)
	}

	return &AdminData{ListenAddr: listenAddr.String}, nil
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// UpsertDevice inserts or replaces a device row
func (s *SQLiteProvider) UpsertDevice(d DeviceData) error {
	return upsertDevice(s.db, d)
}

// SetHistoryConfig stores the history configuration
func (s *SQLiteProvider) SetHistoryConfig(h HistoryData) error {
	return setHistoryConfig(s.db, h)
}

// SetAdminConfig stores the admin endpoint configuration
func (s *SQLiteProvider) SetAdminConfig(a AdminData) error {
	return setAdminConfig(s.db, a)
}

func upsertDevice(db execer, d DeviceData) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO devices (
			name, type, enabled, hostname, port, serial_device, baud,
			loop_count, verify_crc, capture_file,
			temperature_voltage_file, humidity_voltage_file, poll_interval
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Type, d.Enabled, nullString(d.Hostname), nullString(d.Port),
		nullString(d.SerialDevice), nullInt(d.Baud), nullInt(d.LoopCount), d.VerifyCRC,
		nullString(d.CaptureFile), nullString(d.TemperatureVoltageFile),
		nullString(d.HumidityVoltageFile), nullString(d.PollInterval),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", d.Name, err)
	}
	return nil
}

func setHistoryConfig(db execer, h HistoryData) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO history (id, capacity, max_age, evict_interval) VALUES (1, ?, ?, ?)`,
		nullInt(h.Capacity), nullString(h.MaxAge), nullString(h.EvictInterval))
	if err != nil {
		return fmt.Errorf("failed to store history config: %w", err)
	}
	return nil
}

func setAdminConfig(db execer, a AdminData) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO admin (id, listen_addr) VALUES (1, ?)`, nullString(a.ListenAddr))
	if err != nil {
		return fmt.Errorf("failed to store admin config: %w", err)
	}
	return nil
}

// SaveConfig replaces the stored configuration with c in one transaction
func (s *SQLiteProvider) SaveConfig(c *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM devices`, `DELETE FROM history`, `DELETE FROM admin`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear configuration: %w", err)
		}
	}

	for _, d := range c.Devices {
		if err := upsertDevice(tx, d); err != nil {
			return err
		}
	}
	if err := setHistoryConfig(tx, c.History); err != nil {
		return err
	}
	if err := setAdminConfig(tx, c.Admin); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit configuration: %w", err)
	}
	return nil
}

// IsReadOnly returns false since the database can be written
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
