package dataset

import (
	"testing"
	"time"
)

func fredDataset(rows ...[]string) *Dataset {
	d := New("fred", "https://example.com", []string{"State Name", "Year", "Unemployment [Percent]"}, "State Name", "Year")
	for _, r := range rows {
		d.Append(r...)
	}
	return d
}

func TestDiff(t *testing.T) {
	previous := CreateSnapshot(fredDataset(
		[]string{"Alabama", "2023", "2.5"},
		[]string{"Alaska", "2023", "4.2"},
		[]string{"Arizona", "2023", "3.9"},
	), time.Now().UTC().Format(time.RFC3339))

	current := fredDataset(
		[]string{"Alabama", "2023", "2.5"},
		[]string{"Alaska", "2023", "4.4"},
		[]string{"Arkansas", "2023", "3.3"},
	)

	result := Diff(previous, current)

	t.Run("finds added rows", func(t *testing.T) {
		if len(result.Added) != 1 || result.Added[0][0] != "Arkansas" {
			t.Errorf("Added = %v, want [Arkansas]", result.Added)
		}
	})

	t.Run("finds removed rows", func(t *testing.T) {
		if len(result.Removed) != 1 || result.Removed[0][0] != "Arizona" {
			t.Errorf("Removed = %v, want [Arizona]", result.Removed)
		}
	})

	t.Run("reports revised values as changes", func(t *testing.T) {
		if len(result.Changed) != 1 {
			t.Fatalf("Changed = %d entries, want 1", len(result.Changed))
		}
		c := result.Changed[0]
		if c.Key != "Alaska|2023" || c.Column != "Unemployment [Percent]" || c.OldValue != "4.2" || c.NewValue != "4.4" {
			t.Errorf("Changed[0] = %+v", c)
		}
	})

	if result.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestDiff_Identical(t *testing.T) {
	d := fredDataset(
		[]string{"Alabama", "2023", "2.5"},
		[]string{"Alabama", "2022", "2.6"},
	)
	result := Diff(CreateSnapshot(d, ""), d)
	if !result.Empty() {
		t.Errorf("Diff() of identical dataset = %+v, want empty", result)
	}
}

func TestDiff_NoPrevious(t *testing.T) {
	d := fredDataset([]string{"Alabama", "2023", "2.5"})

	result := Diff(nil, d)
	if len(result.Added) != 1 {
		t.Errorf("Added = %d, want 1", len(result.Added))
	}
	if result.ColumnsChanged {
		t.Error("ColumnsChanged = true for first run")
	}
}

func TestDiff_ColumnsChanged(t *testing.T) {
	prev := CreateSnapshot(fredDataset([]string{"Alabama", "2023", "2.5"}), "")

	cur := New("fred", "", []string{"State Name", "Year", "Unemployment [Thousands]"}, "State Name", "Year")
	cur.Append("Alabama", "2023", "61")

	result := Diff(prev, cur)
	if !result.ColumnsChanged {
		t.Error("ColumnsChanged = false, want true")
	}
	if len(result.Changed) != 0 {
		t.Errorf("Changed = %v, want none when the schema moved", result.Changed)
	}
	if len(result.Added) != 1 {
		t.Errorf("Added = %d, want 1", len(result.Added))
	}
}

func TestRowKey(t *testing.T) {
	d := fredDataset()
	if got := d.RowKey([]string{"Alabama", "2023", "2.5"}); got != "Alabama|2023" {
		t.Errorf("RowKey() = %q, want Alabama|2023", got)
	}

	noKeys := New("x", "", []string{"a", "b"})
	row := []string{"1", "2"}
	if got := noKeys.RowKey(row); got != RowID(row) {
		t.Errorf("RowKey() without keys = %q, want RowID %q", got, RowID(row))
	}
}

func TestRowID_Deterministic(t *testing.T) {
	a := RowID([]string{"Alabama", "01", "AL"})
	b := RowID([]string{"Alabama", "01", "AL"})
	c := RowID([]string{"Alabama0", "1", "AL"})
	if a != b {
		t.Error("RowID() not deterministic")
	}
	if a == c {
		t.Error("RowID() collides when cell boundaries move")
	}
}

func TestValidate(t *testing.T) {
	d := fredDataset([]string{"Alabama", "2023"})
	if err := d.Validate(); err == nil {
		t.Error("Validate() expected width error, got nil")
	}

	bad := New("x", "", []string{"a"}, "missing")
	if err := bad.Validate(); err == nil {
		t.Error("Validate() expected key error, got nil")
	}

	if err := fredDataset([]string{"Alabama", "2023", "1"}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567, "1234567"},
		{2.5, "2.5"},
		{0.0417, "0.0417"},
		{-3, "-3"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
