package registry

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"autonaver/internal/machineid"
)

// minFields is the number of columns a data row needs.
const minFields = 4

// BuyerRecord is one registry row.
type BuyerRecord struct {
	Name       string
	Email      string
	MachineID  machineid.ID
	ExpiryDate string
}

// Snapshot maps machine ids to buyers for a single fetch.
type Snapshot map[machineid.ID]BuyerRecord

// Empty reports whether the snapshot holds no rows.
func (s Snapshot) Empty() bool {
	return len(s) == 0
}

// Lookup returns the buyer registered for id.
func (s Snapshot) Lookup(id machineid.ID) (BuyerRecord, bool) {
	rec, ok := s[id]
	return rec, ok
}

// Source fetches a registry snapshot.
type Source interface {
	Fetch(ctx context.Context) Snapshot
}

// Parse reads a CSV export. The first line is a header. Each line is parsed on
// its own, so a stray quote only affects its own row; a line that does not
// yield four fields as CSV is retried with quotes removed and split on commas.
// Rows with fewer than four fields, no name or an id that does not normalize
// are skipped; a later row for the same id replaces an earlier one.
func Parse(r io.Reader) Snapshot {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)

	snapshot := Snapshot{}
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		addRow(snapshot, splitRow(line))
	}
	return snapshot
}

// splitRow splits one line into cells.
func splitRow(line string) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	fields, err := reader.Read()
	if err == nil && len(fields) >= minFields {
		return fields
	}
	return strings.Split(strings.ReplaceAll(line, `"`, ""), ",")
}

// addRow maps a row of cells onto the snapshot.
func addRow(snapshot Snapshot, fields []string) {
	if len(fields) < minFields {
		return
	}
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return
	}
	id, ok := machineid.Normalize(fields[2])
	if !ok {
		return
	}
	snapshot[id] = BuyerRecord{
		Name:       name,
		Email:      strings.TrimSpace(fields[1]),
		MachineID:  id,
		ExpiryDate: strings.TrimSpace(fields[3]),
	}
}
