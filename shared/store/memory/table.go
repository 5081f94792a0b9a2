package memory

// table keeps records by id in insertion order.
type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row *T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) {
	if _, exists := t.rows[id]; !exists {
		return
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// each visits rows in insertion order until fn returns false.
func (t *table[T]) each(fn func(*T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

// removeWhere deletes every row matching fn and returns their ids.
func (t *table[T]) removeWhere(fn func(*T) bool) []string {
	var removed []string
	kept := t.order[:0]
	for _, id := range t.order {
		if fn(t.rows[id]) {
			delete(t.rows, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}
