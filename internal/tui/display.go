package tui

// DisplayStore holds whether the header is shown. The root model owns one instance.
type DisplayStore struct {
	display bool
}

func NewDisplayStore() *DisplayStore {
	return &DisplayStore{display: true}
}

func (s *DisplayStore) Visible() bool {
	return s.display
}

func (s *DisplayStore) Toggle() {
	s.display = !s.display
}

func (s *DisplayStore) Show() {
	s.display = true
}

func (s *DisplayStore) Hide() {
	s.display = false
}
