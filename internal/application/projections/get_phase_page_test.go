package projections

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
	"factoryplan/internal/domain/profile"
)

// fakeContent implements every reader over in-memory data and counts calls.
type fakeContent struct {
	phases     []phase.Phase
	subphases  map[int64][]phase.Subphase
	potentials map[int64][]potential.Potential
	topRated   []potential.Potential
	profiles   map[int64]profile.Profile
	products   []profile.ProductSection
	categories map[int64][]matrix.Category
	titles     map[int64][]string

	failOn string
	calls  atomic.Int32
}

var errFetch = errors.New("backend returned 500")

func (f *fakeContent) fail(name string) error {
	f.calls.Add(1)
	if f.failOn == name {
		return errFetch
	}
	return nil
}

type fakePhases struct{ *fakeContent }

func (f fakePhases) List(context.Context) ([]phase.Phase, error) {
	return f.phases, f.fail("phases")
}

type fakeSubphases struct{ *fakeContent }

func (f fakeSubphases) List(_ context.Context, id int64) ([]phase.Subphase, error) {
	return f.subphases[id], f.fail("subphases")
}

type fakePotentials struct{ *fakeContent }

func (f fakePotentials) List(_ context.Context, id int64) ([]potential.Potential, error) {
	return f.potentials[id], f.fail("potentials")
}

func (f fakePotentials) TopRated(context.Context) ([]potential.Potential, error) {
	return f.topRated, f.fail("top-rated")
}

type fakeProfiles struct{ *fakeContent }

func (f fakeProfiles) Get(_ context.Context, id int64) (profile.Profile, error) {
	return f.profiles[id], f.fail("profile")
}

type fakeProducts struct{ *fakeContent }

func (f fakeProducts) List(context.Context) ([]profile.ProductSection, error) {
	return f.products, f.fail("products")
}

type fakeMatrix struct{ *fakeContent }

func (f fakeMatrix) ForPhase(_ context.Context, id int64) ([]matrix.Category, error) {
	return f.categories[id], f.fail("matrix")
}

func (f fakeMatrix) CategoryTitles(_ context.Context, id int64) ([]string, error) {
	return f.titles[id], f.fail("titles")
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		phases: []phase.Phase{
			{ID: 1, PhaseNo: 1, Title: "Setting of objectives", ProfileInfo: "Goals"},
			{ID: 2, PhaseNo: 2, Title: "Establishment of product basis", ProfileInfo: "Requirements"},
		},
		subphases: map[int64][]phase.Subphase{
			2: {{ID: 5, PhaseID: 2, Name: "LP 1", Details: []string{"Market analysis"}, OrderNumber: 1}},
		},
		potentials: map[int64][]potential.Potential{
			2: {{ID: 9, PhaseID: 2, Category: "Quality", Title: "Vision inspection", Description: "Cameras"}},
		},
		profiles: map[int64]profile.Profile{
			2: {Sections: []profile.Section{{ID: 3, PhaseID: 2, SectionIcon: "Target", SectionTitle: "Product basis", Content: "Specs"}}},
		},
		categories: map[int64][]matrix.Category{
			2: {
				{ID: 1, PhaseID: 2, CategoryType: matrix.TypeOutcomes, Title: "Product data"},
				{ID: 2, PhaseID: 2, CategoryType: matrix.TypeOutcomes, Title: "Duplicate"},
			},
		},
		titles: map[int64][]string{2: {"Product data"}},
	}
}

func (f *fakeContent) deps() PhasePageDeps {
	return PhasePageDeps{
		Phases:     fakePhases{f},
		Subphases:  fakeSubphases{f},
		Potentials: fakePotentials{f},
		Profiles:   fakeProfiles{f},
		Matrix:     fakeMatrix{f},
	}
}

var editorEditing = access.Context{LoggedIn: true, Editing: true}

func TestQueryPhasePage_ProfileTab(t *testing.T) {
	f := newFakeContent()
	got, err := QueryPhasePage(context.Background(), PhasePageQuery{
		PhaseID: 2,
		Tab:     "bogus",
		Access:  editorEditing,
		Edit:    editstate.EditingExisting{ID: 3},
	}, f.deps())
	if err != nil {
		t.Fatalf("QueryPhasePage: %v", err)
	}

	want := PhasePageResult{
		Phases:   f.phases,
		Phase:    f.phases[1],
		Tab:      TabProfile,
		Access:   editorEditing,
		CanEdit:  true,
		Edit:     editstate.EditingExisting{ID: 3},
		Expanded: editstate.Expanded{},
		Profile: &ProfileView{
			Title:    "Phase 2: Product basis",
			Sections: f.profiles[2].Sections,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("QueryPhasePage mismatch (-want +got):\n%s", diff)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("expected 2 fetches, got %d", n)
	}
}

func TestQueryPhasePage_AdminTabsGateEditing(t *testing.T) {
	f := newFakeContent()
	got, err := QueryPhasePage(context.Background(), PhasePageQuery{
		PhaseID: 2,
		Tab:     TabPotentials,
		Access:  editorEditing,
		Edit:    editstate.EditingNew{},
	}, f.deps())
	if err != nil {
		t.Fatalf("QueryPhasePage: %v", err)
	}
	if got.CanEdit {
		t.Error("non-admin must not edit potentials")
	}
	if diff := cmp.Diff(editstate.State(editstate.Viewing{}), got.Edit); diff != "" {
		t.Errorf("edit state not gated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(f.potentials[2], got.Potentials); diff != "" {
		t.Errorf("potentials mismatch (-want +got):\n%s", diff)
	}
	if got.Profile != nil || got.Matrix != nil {
		t.Error("only the active tab should be populated")
	}
}

func TestQueryPhasePage_MatrixTab(t *testing.T) {
	f := newFakeContent()
	got, err := QueryPhasePage(context.Background(), PhasePageQuery{PhaseID: 2, Tab: TabMatrix}, f.deps())
	if err != nil {
		t.Fatalf("QueryPhasePage: %v", err)
	}
	if got.Matrix == nil {
		t.Fatal("expected matrix")
	}
	if len(got.Matrix.Slots) != len(matrix.Types) {
		t.Fatalf("expected %d slots, got %d", len(matrix.Types), len(got.Matrix.Slots))
	}
	outcomes := got.Matrix.Slots[1]
	if outcomes.Type != matrix.TypeOutcomes || outcomes.Category == nil || outcomes.Category.Title != "Product data" {
		t.Errorf("expected first outcomes category to win, got %+v", outcomes)
	}
	if diff := cmp.Diff([]string{"Product data"}, got.Matrix.Titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryPhasePage_SubphasesTab(t *testing.T) {
	f := newFakeContent()
	got, err := QueryPhasePage(context.Background(), PhasePageQuery{
		PhaseID:  2,
		Tab:      TabSubphases,
		Expanded: editstate.Expanded{0: true},
	}, f.deps())
	if err != nil {
		t.Fatalf("QueryPhasePage: %v", err)
	}
	if diff := cmp.Diff(f.subphases[2], got.Subphases); diff != "" {
		t.Errorf("subphases mismatch (-want +got):\n%s", diff)
	}
	if !got.Expanded[0] {
		t.Error("expanded state should pass through")
	}
}

func TestQueryPhasePage_Errors(t *testing.T) {
	f := newFakeContent()
	if _, err := QueryPhasePage(context.Background(), PhasePageQuery{PhaseID: 99}, f.deps()); !errors.Is(err, ErrPhaseNotFound) {
		t.Errorf("expected ErrPhaseNotFound, got %v", err)
	}
	for _, failOn := range []string{"phases", "profile"} {
		f := newFakeContent()
		f.failOn = failOn
		if _, err := QueryPhasePage(context.Background(), PhasePageQuery{PhaseID: 2}, f.deps()); !errors.Is(err, errFetch) {
			t.Errorf("failOn=%s: expected fetch error, got %v", failOn, err)
		}
	}
	f = newFakeContent()
	f.failOn = "titles"
	if _, err := QueryPhasePage(context.Background(), PhasePageQuery{PhaseID: 2, Tab: TabMatrix}, f.deps()); !errors.Is(err, errFetch) {
		t.Errorf("expected matrix title failure to fail the page, got %v", err)
	}
}

func TestParseTab(t *testing.T) {
	for raw, want := range map[string]Tab{"": TabProfile, "matrix": TabMatrix, "subphases": TabSubphases, "x": TabProfile} {
		if got := ParseTab(raw); got != want {
			t.Errorf("ParseTab(%q) = %q, want %q", raw, got, want)
		}
	}
	if TabMatrix.EditLevel() != access.LevelAdmin || TabSubphases.EditLevel() != access.LevelEditor {
		t.Error("unexpected edit levels")
	}
}

func TestQueryTopRated(t *testing.T) {
	f := newFakeContent()
	f.topRated = []potential.Potential{
		{ID: 1, Title: "unrated"},
		{ID: 2, Title: "three", Rating: ptr(3)},
		{ID: 3, Title: "five", Rating: ptr(5)},
		{ID: 4, Title: "three again", Rating: ptr(3)},
	}
	got, err := QueryTopRated(context.Background(), TopRatedDeps{Potentials: fakePotentials{f}})
	if err != nil {
		t.Fatalf("QueryTopRated: %v", err)
	}
	var ids []int64
	for _, p := range got.Potentials {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]int64{3, 2, 4, 1}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	f.topRated = nil
	got, _ = QueryTopRated(context.Background(), TopRatedDeps{Potentials: fakePotentials{f}})
	if !got.Empty() {
		t.Error("expected empty result")
	}
}

func TestQueryProductOverview(t *testing.T) {
	f := newFakeContent()
	f.products = []profile.ProductSection{{ID: 1, IconName: "Cog", SectionTitle: "Technology", Content: "CNC"}}

	got, err := QueryProductOverview(context.Background(), ProductOverviewQuery{
		Access: access.Context{LoggedIn: true},
		Edit:   editstate.EditingExisting{ID: 1},
	}, ProductOverviewDeps{Sections: fakeProducts{f}})
	if err != nil {
		t.Fatalf("QueryProductOverview: %v", err)
	}
	want := ProductOverviewResult{Sections: f.products, CanEdit: false, Edit: editstate.Viewing{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	f.failOn = "products"
	if _, err := QueryProductOverview(context.Background(), ProductOverviewQuery{}, ProductOverviewDeps{Sections: fakeProducts{f}}); !errors.Is(err, errFetch) {
		t.Errorf("expected fetch error, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
