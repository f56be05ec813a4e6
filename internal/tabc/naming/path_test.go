package naming

import "testing"

func TestPlannerNext(t *testing.T) {
	t.Parallel()

	planner := NewPlanner()

	got := []string{
		planner.Next("examples/add.tl", ".c"),
		planner.Next("other/add.tl", ".c"),
		planner.Next("Add.tl", ".c"),
		planner.Next("sum.tl", ".c"),
		planner.Next("add.tl", ""),
	}
	want := []string{"add.c", "add-1.c", "Add-2.c", "sum.c", "add"}

	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("Next()[%d] = %q, want %q", index, got[index], want[index])
		}
	}
}

func TestStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "prog.tl", want: "prog"},
		{input: "/tmp/dir/my prog.tl", want: "my-prog"},
		{input: "noext", want: "noext"},
		{input: ".tl", want: "program"},
		{input: "", want: "program"},
	}

	for _, tt := range tests {
		if got := Stem(tt.input); got != tt.want {
			t.Fatalf("Stem(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
