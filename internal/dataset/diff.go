package dataset

import (
	"sort"
	"time"
)

// Snapshot is the persisted form of a dataset at a point in time
type Snapshot struct {
	Name      string              `json:"name"`
	Source    string              `json:"source"`
	Columns   []string            `json:"columns"`
	Rows      map[string][]string `json:"rows"`      // keyed by RowID
	KeyIndex  map[string]string   `json:"key_index"` // RowKey → RowID
	UpdatedAt string              `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:     name,
		Rows:     make(map[string][]string),
		KeyIndex: make(map[string]string),
	}
}

// CreateSnapshot creates a snapshot from a dataset
func CreateSnapshot(d *Dataset, updatedAt string) *Snapshot {
	snap := NewSnapshot(d.Name)
	snap.Source = d.Source
	snap.Columns = append([]string(nil), d.Columns...)
	snap.UpdatedAt = updatedAt

	for _, row := range d.Rows {
		id := RowID(row)
		snap.Rows[id] = row
		snap.KeyIndex[d.RowKey(row)] = id
	}
	return snap
}

// CellChange is one cell whose value differs between runs for the same row key
type CellChange struct {
	Key        string    `json:"key"`
	Column     string    `json:"column"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// DiffResult contains the results of comparing a dataset to a previous snapshot
type DiffResult struct {
	Added          [][]string    `json:"added"`
	Removed        [][]string    `json:"removed"`
	Changed        []*CellChange `json:"changed"`
	ColumnsChanged bool          `json:"columns_changed,omitempty"`
}

// Empty reports whether the dataset is unchanged.
func (r *DiffResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0 && !r.ColumnsChanged
}

// Diff compares current against a previous snapshot.
// Rows whose key exists on both sides but whose cells differ are reported as
// Changed, not as an Added/Removed pair.
func Diff(previous *Snapshot, current *Dataset) *DiffResult {
	result := &DiffResult{
		Added:   make([][]string, 0),
		Removed: make([][]string, 0),
		Changed: make([]*CellChange, 0),
	}

	if previous == nil {
		previous = NewSnapshot(current.Name)
	}
	result.ColumnsChanged = len(previous.Rows) > 0 && !equalStrings(previous.Columns, current.Columns)

	seenKeys := make(map[string]bool, len(current.Rows))
	now := time.Now().UTC()

	for _, row := range current.Rows {
		key := current.RowKey(row)
		seenKeys[key] = true

		if _, exists := previous.Rows[RowID(row)]; exists {
			continue
		}

		prevID, exists := previous.KeyIndex[key]
		if !exists || result.ColumnsChanged {
			result.Added = append(result.Added, row)
			continue
		}
		result.Changed = append(result.Changed, detectChanges(key, current.Columns, previous.Rows[prevID], row, now)...)
	}

	for key, id := range previous.KeyIndex {
		if !seenKeys[key] {
			result.Removed = append(result.Removed, previous.Rows[id])
		}
	}

	sortRows(result.Added)
	sortRows(result.Removed)
	sort.Slice(result.Changed, func(i, j int) bool {
		if result.Changed[i].Key != result.Changed[j].Key {
			return result.Changed[i].Key < result.Changed[j].Key
		}
		return result.Changed[i].Column < result.Changed[j].Column
	})

	return result
}

// detectChanges compares two rows cell by cell
func detectChanges(key string, columns, previous, current []string, at time.Time) []*CellChange {
	var changes []*CellChange
	for i, col := range columns {
		var old string
		if i < len(previous) {
			old = previous[i]
		}
		if i < len(current) && current[i] != old {
			changes = append(changes, &CellChange{
				Key:        key,
				Column:     col,
				OldValue:   old,
				NewValue:   current[i],
				DetectedAt: at,
			})
		}
	}
	return changes
}

func sortRows(rows [][]string) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
