package feed

// boundedSet is a string set that remembers insertion order and drops
// its oldest members once it exceeds its capacity. Not safe for
// concurrent use; the poller is the only writer.
type boundedSet struct {
	members map[string]bool
	order   []string
	cap     int
}

func newBoundedSet(capacity int) *boundedSet {
	return &boundedSet{
		members: make(map[string]bool),
		cap:     capacity,
	}
}

func (s *boundedSet) Contains(v string) bool {
	return s.members[v]
}

func (s *boundedSet) Add(v string) {
	if s.members[v] {
		return
	}
	s.members[v] = true
	s.order = append(s.order, v)
	for len(s.order) > s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
}

func (s *boundedSet) Len() int {
	return len(s.members)
}
