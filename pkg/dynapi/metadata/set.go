package metadata

import "fmt"

// Set is the ordered list of records attached to one target. A target holds
// at most one record per kind; attaching a kind again replaces it in place.
type Set struct {
	records []Record
}

// Attach adds or replaces records
func (s *Set) Attach(records ...Record) {
	for _, r := range records {
		replaced := false
		for i := range s.records {
			if s.records[i].kind == r.kind {
				s.records[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			s.records = append(s.records, r)
		}
	}
}

// Get returns the record of the given kind
func (s *Set) Get(kind Kind) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	for _, r := range s.records {
		if r.kind == kind {
			return r, true
		}
	}
	return Record{}, false
}

// Has reports whether a record of the given kind is attached
func (s *Set) Has(kind Kind) bool {
	_, ok := s.Get(kind)
	return ok
}

// Remove detaches the record of the given kind
func (s *Set) Remove(kind Kind) bool {
	for i, r := range s.records {
		if r.kind == kind {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of the attached records in attach order
func (s *Set) All() []Record {
	if s == nil {
		return nil
	}
	return append([]Record{}, s.records...)
}

// Len returns the number of attached records
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	return &Set{records: s.All()}
}

// Holder is anything records can be attached to: a type definition, a field
// or a method
type Holder interface {
	Annotations() *Set
}

// ParamHolder is a method whose parameters can carry records
type ParamHolder interface {
	ParamAnnotations(index int) (*Set, error)
}

// Mark attaches records to a type, field or method
func Mark(target Holder, records ...Record) {
	target.Annotations().Attach(records...)
}

// MarkParameter attaches records to the parameter at index
func MarkParameter(target ParamHolder, index int, records ...Record) error {
	set, err := target.ParamAnnotations(index)
	if err != nil {
		return fmt.Errorf("mark parameter %d: %w", index, err)
	}
	set.Attach(records...)
	return nil
}
