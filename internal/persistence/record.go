package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
	"autonaver/internal/machineid"
)

const (
	// VerifiedMarker is the license key written after a successful registry
	// check. Any other key was entered by an operator and not yet confirmed.
	VerifiedMarker = "SPREADSHEET_VERIFIED"
	// StatusActive is the only status tag written today.
	StatusActive = "active"
	// RecordTimeLayout formats RegisteredDate.
	RecordTimeLayout = "2006-01-02 15:04:05"
)

// LicenseRecord is the local verification record.
type LicenseRecord struct {
	LicenseKey          string `json:"license_key"`
	RegisteredMachineID string `json:"registered_machine_id"`
	MACAddress          string `json:"mac_address"`
	WindowsID           string `json:"windows_id"`
	LocalIP             string `json:"local_ip"`
	RegisteredDate      string `json:"registered_date"`
	Status              string `json:"status"`
}

// MachineID returns the normalized registered identifier.
func (r LicenseRecord) MachineID() (machineid.ID, bool) {
	return machineid.Normalize(r.RegisteredMachineID)
}

// Verified reports whether the record was written by a registry check.
func (r LicenseRecord) Verified() bool {
	return r.LicenseKey == VerifiedMarker
}

// RecordStore reads and writes license.json.
type RecordStore struct {
	primary string
	legacy  []string
	logger  *slog.Logger
}

// NewRecordStore returns a store writing primary and reading primary first,
// then each legacy path.
func NewRecordStore(primary string, legacy []string, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	paths := DedupePaths(append([]string{primary}, legacy...))
	return &RecordStore{
		primary: primary,
		legacy:  paths[1:],
		logger:  infrastructure.WithComponent(logger, "license_record"),
	}
}

// Path returns the file Save writes.
func (s *RecordStore) Path() string {
	return s.primary
}

// Load returns the first record that exists and parses.
func (s *RecordStore) Load(ctx context.Context) (LicenseRecord, bool) {
	for _, p := range append([]string{s.primary}, s.legacy...) {
		rec, err := readRecord(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.WarnContext(ctx, "Skipping unreadable license record",
					slog.String("action", "load"),
					slog.String("path", p),
					slog.String("error", err.Error()))
			}
			continue
		}
		return rec, true
	}
	return LicenseRecord{}, false
}

// RegisteredMachineID returns the identifier of the stored record, if any.
func (s *RecordStore) RegisteredMachineID(ctx context.Context) (machineid.ID, bool) {
	rec, ok := s.Load(ctx)
	if !ok {
		return "", false
	}
	return rec.MachineID()
}

// Save writes rec to the primary path.
func (s *RecordStore) Save(ctx context.Context, rec LicenseRecord) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal license record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.primary), 0755); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceWriteFailed, err)
	}
	if err := os.WriteFile(s.primary, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceWriteFailed, err)
	}

	s.logger.InfoContext(ctx, "License record saved",
		slog.String("action", "save"),
		slog.String("result", "success"),
		slog.String("path", s.primary),
		slog.Bool("verified", rec.Verified()))
	return nil
}

func readRecord(path string) (LicenseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LicenseRecord{}, err
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return LicenseRecord{}, fmt.Errorf("parse %s: not an object", path)
	}
	var rec LicenseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return LicenseRecord{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return rec, nil
}
