package game

// guard allows one progression transition at a time. A pending guard
// carries a description of the running transition for status display.
type guard struct {
	pending     bool
	description string
}

func (g *guard) enter(description string) {
	g.pending = true
	g.description = description
}

func (g *guard) leave() {
	g.pending = false
	g.description = ""
}
