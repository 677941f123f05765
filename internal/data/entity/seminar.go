package entity

// Seminar is a capacity-bounded event. RegisteredCount only moves through the
// booking transaction and never exceeds Capacity.
type Seminar struct {
	Base
	Title           string `db:"title"`
	Description     string `db:"description"`
	Capacity        int    `db:"capacity"`
	RegisteredCount int    `db:"registered_count"`
}

func (s *Seminar) Remaining() int {
	if s.RegisteredCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.RegisteredCount
}

func (s *Seminar) IsFull() bool {
	return s.RegisteredCount >= s.Capacity
}
