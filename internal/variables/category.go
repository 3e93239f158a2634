package variables

// Category is one known value of a variable: either a labelled value or a
// missing value synthesised from the missing value rule.
type Category struct {
	// Value is the numeric value; zero for string variables
	Value float64
	// Text is the string value; empty for numeric variables
	Text string
	// Key is the canonical text the category is stored under
	Key     string
	Label   string
	Missing bool
}

// CategoryMap is an insertion-ordered map of categories keyed by canonical text
type CategoryMap struct {
	keys  []string
	items map[string]*Category
}

// NewCategoryMap creates an empty map
func NewCategoryMap() *CategoryMap {
	return &CategoryMap{items: make(map[string]*Category)}
}

// Get returns the category stored under key
func (m *CategoryMap) Get(key string) (*Category, bool) {
	c, ok := m.items[key]
	return c, ok
}

// Upsert returns the category stored under key, creating it at the end of the
// map when it does not exist yet
func (m *CategoryMap) Upsert(key string) *Category {
	if c, ok := m.items[key]; ok {
		return c
	}
	c := &Category{Key: key}
	m.items[key] = c
	m.keys = append(m.keys, key)
	return c
}

// Len returns the number of categories
func (m *CategoryMap) Len() int {
	return len(m.keys)
}

// All returns the categories in insertion order
func (m *CategoryMap) All() []*Category {
	out := make([]*Category, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.items[k]
	}
	return out
}

// Labelled returns the number of categories carrying a label
func (m *CategoryMap) Labelled() int {
	n := 0
	for _, c := range m.items {
		if c.Label != "" {
			n++
		}
	}
	return n
}
