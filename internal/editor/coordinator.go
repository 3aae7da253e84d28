package editor

// Coordinator keeps at most one todo in edit mode.
type Coordinator struct {
	current *Editor
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Current returns the editor in edit mode, or nil.
func (c *Coordinator) Current() *Editor {
	if c.current != nil && !c.current.Editing() {
		c.current = nil
	}

	return c.current
}

func (c *Coordinator) EditingID() string {
	if current := c.Current(); current != nil {
		return current.ID()
	}

	return ""
}

// Begin puts e in edit mode. A different editor already in edit mode is saved
// first and its decision is returned.
func (c *Coordinator) Begin(e *Editor, target Target) (Decision, bool) {
	if target.OnCheckbox {
		return Decision{}, false
	}

	var previous Decision

	if current := c.Current(); current != nil && current != e {
		previous = current.Save()
	}

	if e.Begin(target) {
		c.current = e
	}

	return previous, c.current == e
}

// HandleKey forwards a key press to the editor in edit mode.
func (c *Coordinator) HandleKey(key Key, multiline bool) (Decision, bool) {
	current := c.Current()
	if current == nil {
		return Decision{}, false
	}

	decision, exited := current.HandleKey(key, multiline)
	if exited {
		c.current = nil
	}

	return decision, exited
}

// HandleOutside forwards an interaction outside the item being edited.
func (c *Coordinator) HandleOutside(target Target) (Decision, bool) {
	current := c.Current()
	if current == nil {
		return Decision{}, false
	}

	decision, exited := current.HandleOutside(target)
	if exited {
		c.current = nil
	}

	return decision, exited
}
