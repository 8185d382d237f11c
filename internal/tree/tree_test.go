package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type row struct {
	ID       string
	ParentID *string
	Children []*row
}

func (r *row) NodeID() string                { return r.ID }
func (r *row) NodeParentID() *string         { return r.ParentID }
func (r *row) ChildNodes() []*row            { return r.Children }
func (r *row) SetChildNodes(children []*row) { r.Children = children }

func ptr(s string) *string { return &s }

func r(id string, parent *string) row { return row{ID: id, ParentID: parent} }

func leaf(id string, parent *string, kids ...*row) *row {
	if kids == nil {
		kids = []*row{}
	}
	return &row{ID: id, ParentID: parent, Children: kids}
}

func TestBuild_Chain(t *testing.T) {
	got := Build([]row{r("1", nil), r("2", ptr("1")), r("3", ptr("2"))})

	want := []*row{
		leaf("1", nil,
			leaf("2", ptr("1"),
				leaf("3", ptr("2")))),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	got := Build[row]([]row{})
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 roots, got %d", len(got))
	}
	if got := Build[row](nil); got == nil || len(got) != 0 {
		t.Errorf("nil input: expected empty non-nil slice, got %v", got)
	}
}

func TestBuild_UnorderedInput(t *testing.T) {
	// Children listed before their parents
	got := Build([]row{r("c", ptr("a")), r("b", ptr("a")), r("a", nil)})

	want := []*row{
		leaf("a", nil, leaf("c", ptr("a")), leaf("b", ptr("a"))),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Orphans(t *testing.T) {
	forest := Assemble([]row{r("1", nil), r("2", ptr("missing")), r("3", ptr("2"))})

	if len(forest.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(forest.Roots))
	}
	if forest.Roots[1].ID != "2" {
		t.Errorf("expected orphan '2' promoted to root, got %q", forest.Roots[1].ID)
	}
	if diff := cmp.Diff([]string{"2"}, forest.Orphans); diff != "" {
		t.Errorf("Orphans mismatch (-want +got):\n%s", diff)
	}
	if len(forest.Roots[1].Children) != 1 || forest.Roots[1].Children[0].ID != "3" {
		t.Errorf("expected '3' nested under promoted orphan")
	}
}

func TestAssemble_Cycles(t *testing.T) {
	tests := []struct {
		name      string
		input     []row
		wantRoots []string
		wantCut   []string
	}{
		{
			name:      "self parent",
			input:     []row{r("a", ptr("a")), r("b", ptr("a"))},
			wantRoots: []string{"a"},
			wantCut:   []string{"a"},
		},
		{
			name:      "two cycle",
			input:     []row{r("x", nil), r("a", ptr("b")), r("b", ptr("a"))},
			wantRoots: []string{"x", "a"},
			wantCut:   []string{"a"},
		},
		{
			name:      "three cycle entered from tail",
			input:     []row{r("t", ptr("c")), r("a", ptr("c")), r("b", ptr("a")), r("c", ptr("b"))},
			wantRoots: []string{"a"},
			wantCut:   []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := Assemble(tt.input)

			var roots []string
			for _, n := range forest.Roots {
				roots = append(roots, n.ID)
			}
			if diff := cmp.Diff(tt.wantRoots, roots); diff != "" {
				t.Errorf("roots mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCut, forest.Cycles); diff != "" {
				t.Errorf("cycles mismatch (-want +got):\n%s", diff)
			}
			if got := Count(forest.Roots); got != len(tt.input) {
				t.Errorf("Count() = %d, want %d", got, len(tt.input))
			}
		})
	}
}

func TestBuild_EveryNodeExactlyOnce(t *testing.T) {
	inputs := [][]row{
		{r("1", nil)},
		{r("1", nil), r("2", nil), r("3", nil)},
		{r("1", nil), r("2", ptr("1")), r("3", ptr("1")), r("4", ptr("3")), r("5", ptr("9"))},
		{r("4", ptr("3")), r("3", ptr("2")), r("2", ptr("1")), r("1", nil)},
	}

	for _, input := range inputs {
		roots := Build(input)

		seen := make(map[string]int)
		Walk(roots, func(n *row, _ int) bool {
			seen[n.ID]++
			return true
		})
		if len(seen) != len(input) {
			t.Errorf("reachable ids = %d, want %d", len(seen), len(input))
		}
		for id, c := range seen {
			if c != 1 {
				t.Errorf("id %s appears %d times", id, c)
			}
		}
		for _, root := range roots {
			if root.ParentID != nil && Find(roots, *root.ParentID) != nil {
				t.Errorf("root %s has a resolvable parent", root.ID)
			}
		}
	}
}

func TestBuild_DoesNotMutateInputAndIsRepeatable(t *testing.T) {
	input := []row{r("1", nil), r("2", ptr("1")), r("3", ptr("1"))}
	before := append([]row(nil), input...)

	first := Build(input)
	second := Build(input)

	if diff := cmp.Diff(before, input); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestBuild_SiblingOrder(t *testing.T) {
	roots := Build([]row{r("p", nil), r("z", ptr("p")), r("a", ptr("p")), r("m", ptr("p"))})

	var got []string
	for _, c := range roots[0].Children {
		got = append(got, c.ID)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, got); diff != "" {
		t.Errorf("sibling order mismatch (-want +got):\n%s", diff)
	}
}

func TestFindInsertRemove(t *testing.T) {
	roots := Build([]row{r("1", nil), r("2", ptr("1")), r("3", ptr("2"))})

	if n := Find(roots, "3"); n == nil || n.ID != "3" {
		t.Fatalf("Find(3) = %v", n)
	}
	if n := Find(roots, "nope"); n != nil {
		t.Errorf("Find(nope) = %v, want nil", n)
	}

	roots = InsertChild(roots, ptr("3"), leaf("4", ptr("3")))
	if n := Find(roots, "3"); len(n.Children) != 1 || n.Children[0].ID != "4" {
		t.Errorf("InsertChild did not nest under 3")
	}

	roots = InsertChild(roots, ptr("gone"), leaf("5", ptr("gone")))
	if len(roots) != 2 || roots[1].ID != "5" {
		t.Errorf("InsertChild with missing parent should append root")
	}

	roots, ok := Remove(roots, "2")
	if !ok {
		t.Fatal("Remove(2) reported not found")
	}
	if Count(roots) != 2 {
		t.Errorf("Count after removing subtree = %d, want 2", Count(roots))
	}
	if _, ok := Remove(roots, "2"); ok {
		t.Error("second Remove(2) should report false")
	}
}

func TestWalk_Depth(t *testing.T) {
	roots := Build([]row{r("1", nil), r("2", ptr("1")), r("3", ptr("2")), r("4", nil)})

	depths := map[string]int{}
	Walk(roots, func(n *row, depth int) bool {
		depths[n.ID] = depth
		return n.ID != "2"
	})

	want := map[string]int{"1": 0, "2": 1, "4": 0}
	if diff := cmp.Diff(want, depths); diff != "" {
		t.Errorf("depths mismatch (-want +got):\n%s", diff)
	}
}
