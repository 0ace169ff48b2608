package grid

import "testing"

func TestDefaultGoals(t *testing.T) {
	g := DefaultGoals(Size{Width: 15, Height: 10})

	if g.Start != Pos(0, 0) {
		t.Errorf("Start = %v, want (0, 0)", g.Start)
	}
	if g.Goal != Pos(14, 9) {
		t.Errorf("Goal = %v, want (14, 9)", g.Goal)
	}
}

func TestGoalsSeparate(t *testing.T) {
	size := Size{Width: 4, Height: 4}

	tests := []struct {
		name string
		at   Position
		want Position
	}{
		{"interior", Pos(1, 1), Pos(2, 2)},
		{"top-right corner", Pos(3, 3), Pos(2, 2)},
		{"right edge", Pos(3, 0), Pos(2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goals{Start: tt.at, Goal: tt.at}
			g.Separate(size)
			if g.Start != tt.want {
				t.Errorf("Start = %v, want %v", g.Start, tt.want)
			}
			if g.Goal != tt.at {
				t.Errorf("Goal moved to %v", g.Goal)
			}
		})
	}
}

func TestGoalsNormalize(t *testing.T) {
	g := New(3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			_ = g.SetType(Pos(x, y), Wall)
		}
	}
	goals := Goals{Start: Pos(-2, 0), Goal: Pos(5, 5)}

	goals.Normalize(g)

	if goals.Start != Pos(0, 0) || goals.Goal != Pos(2, 2) {
		t.Fatalf("Normalize() = %+v", goals)
	}
	if !g.Passable(goals.Start) || !g.Passable(goals.Goal) {
		t.Error("Normalize() should force floor under start and goal")
	}
}
