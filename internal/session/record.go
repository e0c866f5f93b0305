package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// RecordVersion is the current schema version of the persisted record.
const RecordVersion = "1"

// MaxRecent bounds the recent mailbox list.
const MaxRecent = 7

// Record is the durable preference payload synchronized with the external store.
type Record struct {
	// Version is the schema version for migration detection
	Version string `json:"version"`

	// RecentMailboxes is most-recent-first
	RecentMailboxes []string `json:"recentMailboxes"`

	// Flash is the user-visible message banner; empty means none
	Flash string `json:"flash,omitempty"`
}

// DefaultRecord returns the record used when nothing valid is stored.
func DefaultRecord() Record {
	return Record{
		Version:         RecordVersion,
		RecentMailboxes: []string{},
	}
}

// Equal reports whether two records hold the same values. Nil and empty
// recent lists compare equal.
func (r Record) Equal(other Record) bool {
	// cmp defers to an Equal method when the type has one, so compare a copy
	// of the fields without it.
	type fields Record
	return cmp.Equal(fields(r), fields(other), cmpopts.EquateEmpty())
}

// withRecent returns a copy of r with mailbox moved to the front of the recent
// list. The receiver's slice is never written to.
func (r Record) withRecent(mailbox string) Record {
	if mailbox == "" {
		return r
	}
	if len(r.RecentMailboxes) > 0 && r.RecentMailboxes[0] == mailbox {
		return r
	}

	recent := make([]string, 0, MaxRecent)
	recent = append(recent, mailbox)
	for _, m := range r.RecentMailboxes {
		if len(recent) == MaxRecent {
			break
		}
		if m != mailbox {
			recent = append(recent, m)
		}
	}
	r.RecentMailboxes = recent
	return r
}

var errEmptyRecord = errors.New("empty session value")

// Decode parses a stored value into a Record.
func Decode(raw []byte) (Record, error) {
	if len(raw) == 0 {
		return Record{}, errEmptyRecord
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse session: %w", err)
	}
	if rec.Version == "" {
		rec.Version = RecordVersion
	}
	if rec.RecentMailboxes == nil {
		rec.RecentMailboxes = []string{}
	}
	return rec, nil
}

// Encode serializes a Record for the external store.
func Encode(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}
