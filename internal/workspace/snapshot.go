package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hpungsan/lapak/internal/errors"
)

// SchemaVersion is written to every backup and required on restore.
const SchemaVersion = "1"

// Snapshot is the backup document of one workspace.
type Snapshot struct {
	LapakBackup   bool     `json:"_lapak_backup"`
	SchemaVersion string   `json:"schema_version"`
	ExportedAt    int64    `json:"exported_at"`
	CurrentPageID string   `json:"current_page_id"`
	Pages         []Page   `json:"pages"`
	Settings      Settings `json:"settings"`
	Media         []Media  `json:"media"`
}

// Snapshot captures the store's state.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{
		LapakBackup:   true,
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().Unix(),
		CurrentPageID: s.current,
		Pages:         s.Pages(),
		Settings:      s.settings,
		Media:         s.MediaList(),
	}
}

// Restore replaces the whole store with snap after validating it.
// On error the store is unchanged.
func (s *Store) Restore(snap *Snapshot) error {
	if err := snap.Validate(s.maxPageBytes); err != nil {
		return err
	}
	s.pages = append([]Page(nil), snap.Pages...)
	s.media = append([]Media(nil), snap.Media...)
	s.settings = snap.Settings
	s.current = snap.CurrentPageID
	return nil
}

// FromSnapshot builds a store from a validated snapshot.
func FromSnapshot(snap *Snapshot, maxPageBytes int) (*Store, error) {
	s := &Store{maxPageBytes: maxPageBytes}
	if err := s.Restore(snap); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes the snapshot as indented JSON.
func (snap *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// DecodeSnapshot parses and validates a backup document. Any problem is
// reported as IMPORT_REJECTED.
func DecodeSnapshot(r io.Reader, maxPageBytes int) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewImportRejected(fmt.Sprintf("read: %v", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewImportRejected("empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, errors.NewImportRejected(fmt.Sprintf("invalid JSON: %v", err))
	}
	if dec.More() {
		return nil, errors.NewImportRejected("trailing data after document")
	}
	if err := snap.Validate(maxPageBytes); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks the snapshot's shape. Errors are IMPORT_REJECTED.
func (snap *Snapshot) Validate(maxPageBytes int) error {
	reject := func(format string, args ...any) error {
		return errors.NewImportRejected(fmt.Sprintf(format, args...))
	}

	if !snap.LapakBackup {
		return reject("not a lapak backup (missing _lapak_backup header)")
	}
	if snap.SchemaVersion != SchemaVersion {
		return reject("unsupported schema_version %q (want %q)", snap.SchemaVersion, SchemaVersion)
	}
	if len(snap.Pages) == 0 {
		return reject("backup has no pages")
	}

	seen := make(map[string]bool, len(snap.Pages))
	for i, p := range snap.Pages {
		if strings.TrimSpace(p.ID) == "" {
			return reject("page %d has no id", i)
		}
		if seen[p.ID] {
			return reject("duplicate page id %q", p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return reject("page %q has no name", p.ID)
		}
		if maxPageBytes > 0 && len(p.HTML) > maxPageBytes {
			return reject("page %q exceeds %d bytes", p.ID, maxPageBytes)
		}
	}
	if !seen[snap.CurrentPageID] {
		return reject("current_page_id %q is not a page in the backup", snap.CurrentPageID)
	}

	if err := snap.Settings.Validate(); err != nil {
		msg := err.Error()
		if le, ok := err.(*errors.LapakError); ok {
			msg = le.Message
		}
		return reject("settings: %s", msg)
	}

	media := make(map[string]bool, len(snap.Media))
	for i, m := range snap.Media {
		if strings.TrimSpace(m.ID) == "" {
			return reject("media %d has no id", i)
		}
		if media[m.ID] {
			return reject("duplicate media id %q", m.ID)
		}
		media[m.ID] = true
		if !IsImageDataURI(m.DataURI) {
			return reject("media %q is not an image data URI", m.ID)
		}
	}
	for _, ref := range []struct{ field, id string }{
		{"logo", snap.Settings.Logo}, {"favicon", snap.Settings.Favicon}, {"qris_image", snap.Settings.QRISImage},
	} {
		if ref.id != "" && !media[ref.id] {
			return reject("settings.%s refers to unknown media %q", ref.field, ref.id)
		}
	}
	return nil
}
