package grid

// Goals holds the start and goal markers placed on a grid.
type Goals struct {
	Start Position
	Goal  Position
}

// DefaultGoals puts the start in the bottom-left corner and the goal in the
// top-right corner.
func DefaultGoals(s Size) Goals {
	return Goals{
		Start: Position{},
		Goal:  s.Clamp(Position{X: s.Width - 1, Y: s.Height - 1}),
	}
}

// Clamp keeps both markers inside the grid, e.g. after a resize.
func (g *Goals) Clamp(s Size) {
	g.Start = s.Clamp(g.Start)
	g.Goal = s.Clamp(g.Goal)
}

// Separate moves the start one cell diagonally, away from the border, when it
// sits on the goal.
func (g *Goals) Separate(s Size) {
	if g.Start != g.Goal {
		return
	}
	p := s.Clamp(g.Start)
	if p.X == s.Width-1 {
		p.X--
	} else {
		p.X++
	}
	if p.Y == s.Height-1 {
		p.Y--
	} else {
		p.Y++
	}
	g.Start = s.Clamp(p)
}

// Normalize clamps and separates the markers and forces the cells under them
// to be floor.
func (g *Goals) Normalize(grid *Grid) {
	size := grid.Size()
	g.Clamp(size)
	g.Separate(size)
	grid.Paint(g.Start, Floor)
	grid.Paint(g.Goal, Floor)
}
