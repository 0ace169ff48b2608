package grid

import "fmt"

// Snapshot is the immutable boolean projection of a Grid passed into one
// invocation. Rows are in array order (row 0 = top); true means passable.
type Snapshot [][]bool

// Validate checks that the snapshot is rectangular with no zero dimension.
func (s Snapshot) Validate() error {
	if len(s) == 0 || len(s[0]) == 0 {
		return ErrEmptySnapshot
	}
	width := len(s[0])
	for row := range s {
		if len(s[row]) != width {
			return fmt.Errorf("row %d has %d cells, want %d: %w", row, len(s[row]), width, ErrRaggedSnapshot)
		}
	}
	return nil
}

// Size returns the snapshot dimensions, read from the first row. Call
// Validate first when the snapshot comes from outside the grid package.
func (s Snapshot) Size() Size {
	if len(s) == 0 {
		return Size{}
	}
	return Size{Width: len(s[0]), Height: len(s)}
}

// Passable reports the classification of host position p.
func (s Snapshot) Passable(p Position) bool {
	size := s.Size()
	if !size.Contains(p) {
		return false
	}
	row, col := size.ToArray(p)
	return s[row][col]
}

// Bytes flattens the snapshot row by row, one byte per cell (1 = passable).
func (s Snapshot) Bytes() []byte {
	size := s.Size()
	out := make([]byte, 0, size.Width*size.Height)
	for _, row := range s {
		for _, ok := range row {
			if ok {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// Clone returns a deep copy, so the caller may keep mutating its grid while an
// invocation reads the copy.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for i := range s {
		c[i] = append([]bool(nil), s[i]...)
	}
	return c
}

// FromSnapshot rebuilds a grid of floor/wall tiles from a snapshot.
func FromSnapshot(s Snapshot) (*Grid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	size := s.Size()
	g := New(size.Width, size.Height)
	for row := range s {
		for col, ok := range s[row] {
			if !ok {
				g.rows[size.Height-1-row][col].Type = Wall
			}
		}
	}
	return g, nil
}
