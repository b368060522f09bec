package results

import "fmt"

// OutOfRangeError is returned by SelectIndex for an index outside the list.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d is out of range [0, %d)", e.Index, e.Len)
}

// Navigator moves the selection cursor of a Store. It never touches the
// candidate list itself.
type Navigator struct {
	store *Store
}

func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// SelectPrevious moves one step back. It stays put at the first candidate.
func (n *Navigator) SelectPrevious() int {
	idx, _ := n.store.move(func(current, _ int) (int, error) {
		return max(current-1, 0), nil
	})
	return idx
}

// SelectNext moves one step forward. It stays put at the last candidate.
func (n *Navigator) SelectNext() int {
	idx, _ := n.store.move(func(current, length int) (int, error) {
		return min(current+1, length-1), nil
	})
	return idx
}

// SelectIndex jumps to i. An empty store is left untouched without error.
func (n *Navigator) SelectIndex(i int) (int, error) {
	return n.store.move(func(_, length int) (int, error) {
		if i < 0 || i >= length {
			return 0, &OutOfRangeError{Index: i, Len: length}
		}
		return i, nil
	})
}

func (n *Navigator) HasPrevious() bool {
	return n.store.SelectedIndex() > 0
}

func (n *Navigator) HasNext() bool {
	idx := n.store.SelectedIndex()
	return idx != NoSelection && idx < n.store.Len()-1
}
