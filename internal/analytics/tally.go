package analytics

// Count is a category label with the number of shots in it
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// tally counts open-ended string categories (clubs, lies) and remembers the
// order in which each key was first seen.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// top returns the key with the highest count; ties go to the key seen first
func (t *tally) top() (string, int) {
	var (
		best  string
		count int
	)
	for _, k := range t.order {
		if t.counts[k] > count {
			best, count = k, t.counts[k]
		}
	}
	return best, count
}

// entries returns the counts in first-seen order
func (t *tally) entries() []Count {
	out := make([]Count, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Count{Key: k, Count: t.counts[k]})
	}
	return out
}
