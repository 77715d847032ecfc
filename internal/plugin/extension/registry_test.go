package extension

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/domain"
)

func testSet() *Set {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSet(log)
}

func TestDuplicateColumnFirstWins(t *testing.T) {
	set := testSet()

	first := TaskColumn{ID: "due", Plugin: "alpha", Title: "Due"}
	second := TaskColumn{ID: "due", Plugin: "beta", Title: "Deadline"}

	if !set.TaskColumns.Add(first) {
		t.Fatal("first Add() = false, want true")
	}
	if set.TaskColumns.Add(second) {
		t.Error("duplicate Add() = true, want false")
	}

	all := set.TaskColumns.All()
	if len(all) != 1 {
		t.Fatalf("All() returned %d columns, want 1", len(all))
	}
	if all[0].Plugin != "alpha" || all[0].Title != "Due" {
		t.Errorf("surviving column = %+v, want alpha's registration", all[0])
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	set := testSet()

	for _, id := range []string{"c", "a", "b"} {
		set.PaletteCommands.Add(PaletteCommand{ID: id, Plugin: "p"})
	}

	all := set.PaletteCommands.All()
	got := make([]string, len(all))
	for i, c := range all {
		got[i] = c.ID
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	set := testSet()
	set.Views.Add(View{Name: "kanban", Plugin: "p"})

	all := set.Views.All()
	all[0] = View{Name: "mutated"}

	if v, ok := set.Views.Get("kanban"); !ok || v.Name != "kanban" {
		t.Error("mutating All()'s result must not affect the registry")
	}
}

func TestRemove(t *testing.T) {
	set := testSet()
	set.Modals.Add(Modal{ID: "pomodoro", Plugin: "p"})

	if !set.Modals.Remove("pomodoro") {
		t.Error("Remove() = false, want true")
	}
	if set.Modals.Remove("pomodoro") {
		t.Error("second Remove() = true, want false")
	}
	if set.Modals.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Modals.Len())
	}
}

func TestRemoveAllForOwner(t *testing.T) {
	set := testSet()
	set.TaskColumns.Add(TaskColumn{ID: "est", Plugin: "mine"})
	set.Keybindings.Add(Keybinding{Combo: "ctrl+t", Plugin: "mine"})
	set.Keybindings.Add(Keybinding{Combo: "ctrl+u", Plugin: "other"})
	set.StatusBarItems.Add(StatusBarItem{ID: "clock", Plugin: "mine"})

	if n := set.RemoveAllForOwner("mine"); n != 3 {
		t.Errorf("RemoveAllForOwner() = %d, want 3", n)
	}
	if set.Keybindings.Len() != 1 {
		t.Errorf("Keybindings.Len() = %d, want 1", set.Keybindings.Len())
	}
	if n := set.RemoveAllForOwner(""); n != 0 {
		t.Errorf("RemoveAllForOwner(\"\") = %d, want 0", n)
	}
}

func TestKeybindingWhenEvaluatedAtDispatch(t *testing.T) {
	enabled := false
	kb := Keybinding{
		Combo:  "ctrl+x",
		Plugin: "p",
		When:   func() bool { return enabled },
	}

	if kb.Active() {
		t.Error("Active() = true before predicate flips")
	}
	enabled = true
	if !kb.Active() {
		t.Error("Active() = false after predicate flips")
	}

	// No predicate means always active.
	if !(Keybinding{Combo: "x"}).Active() {
		t.Error("binding without When must be active")
	}
}

func TestTaskColumnRender(t *testing.T) {
	col := TaskColumn{
		ID:     "prio",
		Plugin: "p",
		Render: func(task domain.Task) string {
			if task.Priority == 4 {
				return "!!"
			}
			return ""
		},
	}
	if got := col.Render(domain.Task{Priority: 4}); got != "!!" {
		t.Errorf("Render() = %q, want %q", got, "!!")
	}
}

func TestNormalizeCombo(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "ctrl+p", want: "ctrl+p"},
		{in: "Ctrl+P", want: "ctrl+p"},
		{in: "Shift+Ctrl+P", want: "ctrl+shift+p"},
		{in: "C+x", want: "ctrl+x"},
		{in: "cmd+k", want: "meta+k"},
		{in: "opt+Enter", want: "alt+enter"},
		{in: "Return", want: "enter"},
		{in: "Escape", want: "esc"},
		{in: "F5", want: "f5"},
		{in: "space", want: "space"},
		{in: "g", want: "g"},
		{in: "", wantErr: true},
		{in: "ctrl+", wantErr: true},
		{in: "ctrl+ctrl+x", wantErr: true},
		{in: "hyper+x", wantErr: true},
		{in: "ctrl+nosuchkey", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeCombo(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeCombo(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCombo(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCombo(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizedCombosCollide(t *testing.T) {
	set := testSet()

	c1, _ := NormalizeCombo("Ctrl+Shift+P")
	c2, _ := NormalizeCombo("shift+ctrl+p")

	set.Keybindings.Add(Keybinding{Combo: c1, Plugin: "alpha"})
	if set.Keybindings.Add(Keybinding{Combo: c2, Plugin: "beta"}) {
		t.Error("same chord spelled differently must collide after normalization")
	}
}
