package passage

import "golang.org/x/text/unicode/norm"

// Repository owns the navigable passages of a story.
type Repository struct {
	byID    map[string]*Passage
	ordered []*Passage // document order; title scans take the first match
}

// NewRepository indexes passages by id. A later passage with the same id
// replaces an earlier one in the earlier one's position.
func NewRepository(passages ...*Passage) *Repository {
	r := &Repository{byID: make(map[string]*Passage, len(passages))}
	pos := make(map[string]int, len(passages))
	for _, p := range passages {
		if i, ok := pos[p.ID]; ok {
			r.ordered[i] = p
		} else {
			pos[p.ID] = len(r.ordered)
			r.ordered = append(r.ordered, p)
		}
		r.byID[p.ID] = p
	}
	return r
}

// Load parses raw records into a repository. The first parse failure aborts
// the load.
func Load(records []RawRecord, opts ...ParseOption) (*Repository, error) {
	passages := make([]*Passage, 0, len(records))
	for _, rec := range records {
		p, err := Parse(rec, opts...)
		if err != nil {
			return nil, err
		}
		passages = append(passages, p)
	}
	return NewRepository(passages...), nil
}

// Get finds a passage by exact id, then by display title. Titles are compared
// in Unicode NFC form. The boolean is false when nothing matches.
func (r *Repository) Get(idOrName string) (*Passage, bool) {
	if p, ok := r.byID[idOrName]; ok {
		return p, true
	}
	want := norm.NFC.String(idOrName)
	for _, p := range r.ordered {
		if norm.NFC.String(p.DisplayTitle()) == want {
			return p, true
		}
	}
	return nil, false
}

// All returns the passages in document order.
func (r *Repository) All() []*Passage {
	out := make([]*Passage, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of passages.
func (r *Repository) Len() int { return len(r.ordered) }
