package crf

// TagSet maps between string tag names and the integer ids the CRF
// operates on.
type TagSet struct {
	ToID  map[string]int `json:"to_id"`
	ToStr []string       `json:"to_str"`
}

// NewTagSet creates an empty tag set.
func NewTagSet(names ...string) *TagSet {
	s := &TagSet{ToID: make(map[string]int)}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add adds a tag name if not already present and returns its id.
func (s *TagSet) Add(name string) int {
	if id, ok := s.ToID[name]; ok {
		return id
	}
	id := len(s.ToStr)
	s.ToID[name] = id
	s.ToStr = append(s.ToStr, name)
	return id
}

// ID returns the id for a tag name, or -1 if not found.
func (s *TagSet) ID(name string) int {
	if id, ok := s.ToID[name]; ok {
		return id
	}
	return -1
}

// Name returns the tag name for an id, or "" if out of range.
func (s *TagSet) Name(id int) string {
	if id < 0 || id >= len(s.ToStr) {
		return ""
	}
	return s.ToStr[id]
}

// Size returns the number of tag names.
func (s *TagSet) Size() int {
	return len(s.ToStr)
}

// DecodeLabels decodes the emissions and maps the resulting tag ids to
// their names in ts.
func (c *CRF) DecodeLabels(ts *TagSet, emissions [][][]float64, mask [][]bool) ([][]string, error) {
	paths, err := c.Decode(emissions, mask)
	if err != nil {
		return nil, err
	}
	labels := make([][]string, len(paths))
	for b, path := range paths {
		labels[b] = make([]string, len(path))
		for t, id := range path {
			labels[b][t] = ts.Name(id)
		}
	}
	return labels, nil
}
