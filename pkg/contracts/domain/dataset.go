package domain

import "sort"

// Dataset is an ordered, immutable collection of sales records. Filtering
// returns a new Dataset and never touches the receiver.
type Dataset struct {
	records []GameSale
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []GameSale) *Dataset {
	owned := make([]GameSale, len(records))
	copy(owned, records)
	return &Dataset{records: owned}
}

// EmptyDataset returns a Dataset with no records.
func EmptyDataset() *Dataset {
	return &Dataset{}
}

// Len returns the number of records; a nil Dataset is empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Records returns a copy of the records in order.
func (d *Dataset) Records() []GameSale {
	if d == nil {
		return nil
	}
	out := make([]GameSale, len(d.records))
	copy(out, d.records)
	return out
}

// At returns the i-th record.
func (d *Dataset) At(i int) GameSale {
	return d.records[i]
}

// Each calls fn for every record in order.
func (d *Dataset) Each(fn func(GameSale)) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		fn(r)
	}
}

// Filter returns the records for which keep returns true, preserving order.
func (d *Dataset) Filter(keep func(GameSale) bool) *Dataset {
	if d == nil {
		return EmptyDataset()
	}
	out := make([]GameSale, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Dataset{records: out}
}

// Slice returns records [offset, offset+limit) clipped to the dataset.
func (d *Dataset) Slice(offset, limit int) []GameSale {
	n := d.Len()
	if offset < 0 {
		offset = 0
	}
	if offset >= n || limit <= 0 {
		return []GameSale{}
	}
	end := offset + limit
	if end > n {
		end = n
	}
	out := make([]GameSale, end-offset)
	copy(out, d.records[offset:end])
	return out
}

// YearBounds returns the smallest and largest release year. ok is false for
// an empty dataset.
func (d *Dataset) YearBounds() (min, max int, ok bool) {
	if d.Empty() {
		return 0, 0, false
	}
	min, max = d.records[0].Year, d.records[0].Year
	for _, r := range d.records[1:] {
		if r.Year < min {
			min = r.Year
		}
		if r.Year > max {
			max = r.Year
		}
	}
	return min, max, true
}

// Distinct returns the sorted distinct values of dimension dim.
func (d *Dataset) Distinct(dim Dimension) []string {
	seen := make(map[string]struct{})
	d.Each(func(r GameSale) {
		seen[r.Value(dim)] = struct{}{}
	})
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
