package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"care-companion/pkg"

	"github.com/google/uuid"
)

// ValidationError reports an incomplete or malformed medication form.  No
// state is changed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DefaultMedications is the list used when no medication file exists yet.
func DefaultMedications() []pkg.MedicationRecord {
	return []pkg.MedicationRecord{
		{ID: uuid.NewString(), Name: "Blood Pressure Medication", Dosage: "1 tablet", Times: []string{"08:00", "20:00"}, WithFood: true},
		{ID: uuid.NewString(), Name: "Vitamin D", Dosage: "1 capsule", Times: []string{"09:00"}, WithFood: false},
	}
}

// MedicationStore keeps the medication list in memory and mirrors every
// change to a JSON file.  It is not safe for concurrent use; callers
// serialise access.
type MedicationStore struct {
	file    *jsonFile
	records []pkg.MedicationRecord
}

// NewMedicationStore returns a store backed by path.  Call Load before use.
func NewMedicationStore(path string) *MedicationStore {
	return &MedicationStore{file: newJSONFile(path)}
}

// Load reads the backing file.  A missing file yields the default list.  An
// unreadable file also yields the default list, together with an error
// wrapping ErrUnreadable so the caller can report it.
func (s *MedicationStore) Load() ([]pkg.MedicationRecord, error) {
	var records []pkg.MedicationRecord
	exists, err := s.file.read(&records)
	if err != nil || !exists {
		s.records = DefaultMedications()
		return s.List(), err
	}
	assigned := missingIDs(records)
	s.records = withIDs(records)
	if assigned {
		// Records from older files have no id; persist the new ones so they
		// stay valid for RemoveByID.
		if err := s.file.locked(func() error { return s.file.write(s.records) }); err != nil {
			return s.List(), fmt.Errorf("persist medication ids: %w", err)
		}
	}
	return s.List(), nil
}

// Save overwrites the backing file with records and makes them current.
func (s *MedicationStore) Save(records []pkg.MedicationRecord) error {
	records = withIDs(append([]pkg.MedicationRecord(nil), records...))
	if err := s.file.locked(func() error { return s.file.write(records) }); err != nil {
		return err
	}
	s.records = records
	return nil
}

// List returns a copy of the current records.
func (s *MedicationStore) List() []pkg.MedicationRecord {
	out := make([]pkg.MedicationRecord, len(s.records))
	for i, r := range s.records {
		r.Times = append([]string(nil), r.Times...)
		out[i] = r
	}
	return out
}

// Add validates rec, assigns it an ID when it has none, appends it and
// rewrites the file.
func (s *MedicationStore) Add(rec pkg.MedicationRecord) (pkg.MedicationRecord, error) {
	if err := ValidateMedication(rec); err != nil {
		return pkg.MedicationRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	err := s.mutate(func(records []pkg.MedicationRecord) []pkg.MedicationRecord {
		return append(records, rec)
	})
	if err != nil {
		return pkg.MedicationRecord{}, err
	}
	return rec, nil
}

// RemoveByID deletes the record with the given ID.  It returns ErrNotFound
// when no record matches.
func (s *MedicationStore) RemoveByID(id string) error {
	found := false
	err := s.mutate(func(records []pkg.MedicationRecord) []pkg.MedicationRecord {
		out := records[:0]
		for _, r := range records {
			if r.ID == id {
				found = true
				continue
			}
			out = append(out, r)
		}
		return out
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	return nil
}

// Remove deletes every record whose name equals name and reports how many
// were removed.  Removing an absent name leaves the store untouched.
func (s *MedicationStore) Remove(name string) (int, error) {
	n := 0
	for _, r := range s.records {
		if r.Name == name {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	removed := 0
	err := s.mutate(func(records []pkg.MedicationRecord) []pkg.MedicationRecord {
		out := records[:0]
		for _, r := range records {
			if r.Name == name {
				removed++
				continue
			}
			out = append(out, r)
		}
		return out
	})
	return removed, err
}

// mutate applies fn under the file lock.  A readable file written by
// another process wins over the in-memory copy.
func (s *MedicationStore) mutate(fn func([]pkg.MedicationRecord) []pkg.MedicationRecord) error {
	return s.file.locked(func() error {
		current := s.List()
		var onDisk []pkg.MedicationRecord
		if exists, err := s.file.read(&onDisk); err == nil && exists {
			current = withIDs(adoptIDs(onDisk, current))
		}
		next := fn(current)
		if err := s.file.write(next); err != nil {
			return err
		}
		s.records = next
		return nil
	})
}

// ParseMedicationForm turns the raw form fields into a record.  Times are
// split on commas, trimmed, and empty entries dropped.
func ParseMedicationForm(req pkg.MedicationRequest) (pkg.MedicationRecord, error) {
	rec := pkg.MedicationRecord{
		Name:     strings.TrimSpace(req.Name),
		Dosage:   strings.TrimSpace(req.Dosage),
		WithFood: req.WithFood,
	}
	for _, t := range strings.Split(req.Times, ",") {
		if t = strings.TrimSpace(t); t != "" {
			rec.Times = append(rec.Times, t)
		}
	}
	if err := ValidateMedication(rec); err != nil {
		return pkg.MedicationRecord{}, err
	}
	return rec, nil
}

// ValidateMedication checks that name, dosage and at least one HH:MM time
// are present.
func ValidateMedication(rec pkg.MedicationRecord) error {
	switch {
	case strings.TrimSpace(rec.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(rec.Dosage) == "":
		return &ValidationError{Field: "dosage", Reason: "required"}
	case len(rec.Times) == 0:
		return &ValidationError{Field: "times", Reason: "at least one time is required"}
	}
	for _, t := range rec.Times {
		if _, err := time.Parse("15:04", t); err != nil {
			return &ValidationError{Field: "times", Reason: fmt.Sprintf("%q is not HH:MM", t)}
		}
	}
	return nil
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func withIDs(records []pkg.MedicationRecord) []pkg.MedicationRecord {
	if records == nil {
		return []pkg.MedicationRecord{}
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].Times == nil {
			records[i].Times = []string{}
		}
	}
	return records
}

func missingIDs(records []pkg.MedicationRecord) bool {
	for _, r := range records {
		if r.ID == "" {
			return true
		}
	}
	return false
}

// adoptIDs copies known IDs onto ID-less records from disk that match the
// in-memory record at the same position.
func adoptIDs(onDisk, known []pkg.MedicationRecord) []pkg.MedicationRecord {
	for i := range onDisk {
		if onDisk[i].ID != "" || i >= len(known) {
			continue
		}
		if onDisk[i].Name == known[i].Name && onDisk[i].Dosage == known[i].Dosage {
			onDisk[i].ID = known[i].ID
		}
	}
	return onDisk
}
