package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Setting keys.
const (
	KeySensitivity     = "sensitivity"
	KeySkinFilter      = "skin_filter"
	KeyFrameRate       = "frame_rate"
	KeyCompressionRate = "compression_rate"
)

// Settings are the runtime tuning values persisted between runs.
type Settings struct {
	Sensitivity     int  `json:"sensitivity"`
	SkinFilter      bool `json:"skin_filter"`
	FrameRate       int  `json:"frame_rate"`
	CompressionRate int  `json:"compression_rate"`
}

// DefaultSettings returns the values used when nothing has been saved.
func DefaultSettings() Settings {
	return Settings{
		Sensitivity:     82,
		SkinFilter:      false,
		FrameRate:       25,
		CompressionRate: 2,
	}
}

// Validate checks that every value is in range.
func (s Settings) Validate() error {
	if s.Sensitivity < 0 || s.Sensitivity > 100 {
		return fmt.Errorf("sensitivity must be between 0 and 100, got %d", s.Sensitivity)
	}
	if s.FrameRate < 1 || s.FrameRate > 60 {
		return fmt.Errorf("frame rate must be between 1 and 60, got %d", s.FrameRate)
	}
	if s.CompressionRate < 1 || s.CompressionRate > 8 {
		return fmt.Errorf("compression rate must be between 1 and 8, got %d", s.CompressionRate)
	}
	return nil
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get loads the settings, filling in defaults for keys never saved.
func (r *SettingsRepository) Get() (Settings, error) {
	settings := DefaultSettings()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		if err := settings.set(key, value); err != nil {
			return settings, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	if err := rows.Err(); err != nil {
		return settings, err
	}

	return settings, nil
}

// Save validates and writes all settings in one transaction.
func (r *SettingsRepository) Save(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range s.values() {
		if _, err := stmt.Exec(key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s Settings) values() map[string]string {
	return map[string]string{
		KeySensitivity:     strconv.Itoa(s.Sensitivity),
		KeySkinFilter:      strconv.FormatBool(s.SkinFilter),
		KeyFrameRate:       strconv.Itoa(s.FrameRate),
		KeyCompressionRate: strconv.Itoa(s.CompressionRate),
	}
}

// set applies one stored key. Unknown keys are ignored so older binaries
// can read newer databases.
func (s *Settings) set(key, value string) error {
	var err error
	switch key {
	case KeySensitivity:
		s.Sensitivity, err = strconv.Atoi(value)
	case KeySkinFilter:
		s.SkinFilter, err = strconv.ParseBool(value)
	case KeyFrameRate:
		s.FrameRate, err = strconv.Atoi(value)
	case KeyCompressionRate:
		s.CompressionRate, err = strconv.Atoi(value)
	}
	return err
}
