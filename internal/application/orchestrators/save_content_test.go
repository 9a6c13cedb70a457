package orchestrators

import (
	"context"
	"errors"
	"testing"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
)

var (
	adminEditing  = access.Context{LoggedIn: true, Admin: true, Editing: true}
	editorEditing = access.Context{LoggedIn: true, Editing: true}
	adminViewing  = access.Context{LoggedIn: true, Admin: true}
)

// mockContentBackend records every call the content orchestrators make.
type mockContentBackend struct {
	calls      []string
	err        error
	subphases  []phase.Subphase
	categories []matrix.Category

	savedPotential potential.Potential
	savedPhase     phase.Phase
	savedSubphase  phase.Subphase
	savedCategory  matrix.Category
	rated          int
}

func (m *mockContentBackend) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockContentBackend) savePotential(_ context.Context, p potential.Potential) (bool, error) {
	m.savedPotential = p
	return p.ID == 0, m.record("save potential")
}

type potentialBackend struct{ *mockContentBackend }

func (b potentialBackend) Save(ctx context.Context, p potential.Potential) (bool, error) {
	return b.savePotential(ctx, p)
}
func (b potentialBackend) Delete(_ context.Context, id int64) error {
	return b.record("delete potential")
}
func (b potentialBackend) Rate(_ context.Context, id int64, rating int) error {
	b.rated = rating
	return b.record("rate potential")
}

type phaseBackend struct{ *mockContentBackend }

func (b phaseBackend) Save(_ context.Context, p phase.Phase) (bool, error) {
	b.savedPhase = p
	return p.ID == 0, b.record("save phase")
}
func (b phaseBackend) Delete(_ context.Context, id int64) error { return b.record("delete phase") }

type subphaseBackend struct{ *mockContentBackend }

func (b subphaseBackend) List(_ context.Context, phaseID int64) ([]phase.Subphase, error) {
	b.calls = append(b.calls, "list subphases")
	return b.subphases, nil
}
func (b subphaseBackend) Save(_ context.Context, s phase.Subphase) (bool, error) {
	b.savedSubphase = s
	return s.ID == 0, b.record("save subphase")
}
func (b subphaseBackend) Delete(_ context.Context, phaseID, id int64) error {
	return b.record("delete subphase")
}

type matrixBackend struct{ *mockContentBackend }

func (b matrixBackend) ForPhase(_ context.Context, phaseID int64) ([]matrix.Category, error) {
	b.calls = append(b.calls, "list categories")
	return b.categories, nil
}

func (b matrixBackend) SaveCategory(_ context.Context, c matrix.Category) (bool, error) {
	b.savedCategory = c
	return c.ID == 0, b.record("save category")
}
func (b matrixBackend) DeleteCategory(_ context.Context, id int64) error {
	return b.record("delete category")
}

// recordingNotifier collects changes passed to a Notifier.
type recordingNotifier struct {
	changes []notification.Change
}

func (r *recordingNotifier) fn() Notifier {
	return func(_ context.Context, c notification.Change) { r.changes = append(r.changes, c) }
}

func validPotential() potential.Potential {
	return potential.Potential{PhaseID: 3, Category: "Quality", Title: "Vision inspection", Description: "Camera based defect detection"}
}

// TestExecuteSavePotential_CreateAndUpdate tests that the ID selects POST or PATCH.
func TestExecuteSavePotential_CreateAndUpdate(t *testing.T) {
	m := &mockContentBackend{}
	notes := &recordingNotifier{}
	deps := SavePotentialDeps{Potentials: potentialBackend{m}, Notify: notes.fn()}

	res, err := ExecuteSavePotential(context.Background(), SavePotentialInput{Access: adminEditing, Actor: "alice", Potential: validPotential()}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || res.Message() != notification.MsgAdded {
		t.Errorf("expected created result, got %+v (%q)", res, res.Message())
	}

	p := validPotential()
	p.ID = 9
	p.Title = "  Vision inspection v2  "
	res, err = ExecuteSavePotential(context.Background(), SavePotentialInput{Access: adminEditing, Actor: "alice", Potential: p}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created || res.Message() != notification.MsgUpdated {
		t.Errorf("expected updated result, got %+v", res)
	}
	if m.savedPotential.Title != "Vision inspection v2" {
		t.Errorf("expected trimmed title, got %q", m.savedPotential.Title)
	}
	if len(m.calls) != 2 {
		t.Errorf("expected 2 backend calls, got %v", m.calls)
	}
	if len(notes.changes) != 2 || notes.changes[1].Action != notification.ActionUpdated || notes.changes[1].Actor != "alice" {
		t.Errorf("unexpected notifications: %+v", notes.changes)
	}
}

// TestExecuteSavePotential_MissingFieldIssuesNoRequest tests validation before the request.
func TestExecuteSavePotential_MissingFieldIssuesNoRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*potential.Potential)
		want   error
	}{
		{"no category", func(p *potential.Potential) { p.Category = " " }, potential.ErrEmptyCategory},
		{"no title", func(p *potential.Potential) { p.Title = "" }, potential.ErrEmptyTitle},
		{"no description", func(p *potential.Potential) { p.Description = "" }, potential.ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockContentBackend{}
			p := validPotential()
			tt.mutate(&p)
			_, err := ExecuteSavePotential(context.Background(), SavePotentialInput{Access: adminEditing, Potential: p}, SavePotentialDeps{Potentials: potentialBackend{m}})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if len(m.calls) != 0 {
				t.Errorf("expected no request, got %v", m.calls)
			}
		})
	}
}

// TestExecuteSavePotential_Forbidden tests the admin and editing gate.
func TestExecuteSavePotential_Forbidden(t *testing.T) {
	for name, ac := range map[string]access.Context{
		"anonymous":     access.Anonymous,
		"not editing":   adminViewing,
		"not admin":     editorEditing,
		"not logged in": {Editing: true, Admin: true},
	} {
		t.Run(name, func(t *testing.T) {
			m := &mockContentBackend{}
			_, err := ExecuteSavePotential(context.Background(), SavePotentialInput{Access: ac, Potential: validPotential()}, SavePotentialDeps{Potentials: potentialBackend{m}})
			if !errors.Is(err, access.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
			if len(m.calls) != 0 {
				t.Errorf("expected no request, got %v", m.calls)
			}
		})
	}
}

// TestExecuteSavePotential_BackendError tests that failures are returned and not notified.
func TestExecuteSavePotential_BackendError(t *testing.T) {
	m := &mockContentBackend{err: errors.New("boom")}
	notes := &recordingNotifier{}
	_, err := ExecuteSavePotential(context.Background(), SavePotentialInput{Access: adminEditing, Potential: validPotential()}, SavePotentialDeps{Potentials: potentialBackend{m}, Notify: notes.fn()})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(notes.changes) != 0 {
		t.Errorf("expected no notification on failure, got %+v", notes.changes)
	}
}

// TestExecuteSavePhase tests required fields and the admin gate.
func TestExecuteSavePhase(t *testing.T) {
	m := &mockContentBackend{}
	deps := SavePhaseDeps{Phases: phaseBackend{m}}

	_, err := ExecuteSavePhase(context.Background(), SavePhaseInput{Access: adminEditing, Phase: phase.Phase{PhaseNo: 2, Title: "Product basis"}}, deps)
	if !errors.Is(err, phase.ErrEmptyProfileInfo) {
		t.Errorf("expected ErrEmptyProfileInfo, got %v", err)
	}
	_, err = ExecuteSavePhase(context.Background(), SavePhaseInput{Access: editorEditing, Phase: phase.Phase{PhaseNo: 2, Title: "x", ProfileInfo: "y"}}, deps)
	if !errors.Is(err, access.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if len(m.calls) != 0 {
		t.Fatalf("expected no request so far, got %v", m.calls)
	}

	res, err := ExecuteSavePhase(context.Background(), SavePhaseInput{Access: adminEditing, Phase: phase.Phase{PhaseNo: 2, Title: " Product basis ", ProfileInfo: "Requirements"}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || m.savedPhase.Title != "Product basis" {
		t.Errorf("unexpected save: %+v %+v", res, m.savedPhase)
	}
}

// TestExecuteSaveSubphase_AppendsOrderNumber tests order assignment for new subphases.
func TestExecuteSaveSubphase_AppendsOrderNumber(t *testing.T) {
	m := &mockContentBackend{subphases: []phase.Subphase{{ID: 1}, {ID: 2}}}
	deps := SaveSubphaseDeps{Subphases: subphaseBackend{m}}

	_, err := ExecuteSaveSubphase(context.Background(), SaveSubphaseInput{
		Access:   editorEditing,
		Subphase: phase.Subphase{PhaseID: 4, Name: "LP 3", Details: []string{"Layout", " ", " Logistics "}},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.savedSubphase.OrderNumber != 3 {
		t.Errorf("expected order number 3, got %d", m.savedSubphase.OrderNumber)
	}
	if len(m.savedSubphase.Details) != 2 || m.savedSubphase.Details[1] != "Logistics" {
		t.Errorf("expected cleaned details, got %q", m.savedSubphase.Details)
	}
}

// TestExecuteSaveSubphase_UpdateKeepsOrder tests that updates do not list first.
func TestExecuteSaveSubphase_UpdateKeepsOrder(t *testing.T) {
	m := &mockContentBackend{}
	_, err := ExecuteSaveSubphase(context.Background(), SaveSubphaseInput{
		Access:   editorEditing,
		Subphase: phase.Subphase{ID: 5, PhaseID: 4, Name: "LP 1", OrderNumber: 1},
	}, SaveSubphaseDeps{Subphases: subphaseBackend{m}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.calls) != 1 || m.calls[0] != "save subphase" {
		t.Errorf("expected a single save, got %v", m.calls)
	}
}

// TestExecuteSaveSubphase_UpdateWithoutOrder tests that a cleared order field keeps the stored order.
func TestExecuteSaveSubphase_UpdateWithoutOrder(t *testing.T) {
	m := &mockContentBackend{subphases: []phase.Subphase{
		{ID: 4, PhaseID: 4, OrderNumber: 1},
		{ID: 5, PhaseID: 4, OrderNumber: 2},
	}}
	_, err := ExecuteSaveSubphase(context.Background(), SaveSubphaseInput{
		Access:   editorEditing,
		Subphase: phase.Subphase{ID: 5, PhaseID: 4, Name: "LP 2"},
	}, SaveSubphaseDeps{Subphases: subphaseBackend{m}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.savedSubphase.OrderNumber != 2 {
		t.Errorf("expected stored order 2, got %d", m.savedSubphase.OrderNumber)
	}
}

// TestExecuteSaveSubphase_NameRequired tests that an empty name blocks the request.
func TestExecuteSaveSubphase_NameRequired(t *testing.T) {
	m := &mockContentBackend{}
	_, err := ExecuteSaveSubphase(context.Background(), SaveSubphaseInput{
		Access:   editorEditing,
		Subphase: phase.Subphase{PhaseID: 4, Name: "  "},
	}, SaveSubphaseDeps{Subphases: subphaseBackend{m}})
	if !errors.Is(err, phase.ErrEmptySubphaseName) {
		t.Errorf("expected ErrEmptySubphaseName, got %v", err)
	}
	if len(m.calls) != 0 {
		t.Errorf("expected no request, got %v", m.calls)
	}
}

// TestExecuteSaveMatrixCategory tests type validation and saving.
func TestExecuteSaveMatrixCategory(t *testing.T) {
	m := &mockContentBackend{}
	deps := SaveMatrixCategoryDeps{Matrix: matrixBackend{m}}

	_, err := ExecuteSaveMatrixCategory(context.Background(), SaveMatrixCategoryInput{
		Access:   adminEditing,
		Category: matrix.Category{PhaseID: 1, CategoryType: "sideways", Title: "x"},
	}, deps)
	if !errors.Is(err, matrix.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}

	res, err := ExecuteSaveMatrixCategory(context.Background(), SaveMatrixCategoryInput{
		Access:   adminEditing,
		Category: matrix.Category{ID: 7, PhaseID: 1, CategoryType: matrix.TypeOutputs, Title: "Target system", DetailText: " KPIs "},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created {
		t.Error("expected update for existing category")
	}
	if m.savedCategory.DetailText != "KPIs" {
		t.Errorf("expected trimmed detail text, got %q", m.savedCategory.DetailText)
	}
}

// TestExecuteSaveMatrixCategory_TypeTaken tests that a second category of a type is refused.
func TestExecuteSaveMatrixCategory_TypeTaken(t *testing.T) {
	m := &mockContentBackend{categories: []matrix.Category{
		{ID: 3, PhaseID: 1, CategoryType: matrix.TypeOutputs, Title: "Target system"},
	}}
	deps := SaveMatrixCategoryDeps{Matrix: matrixBackend{m}}

	_, err := ExecuteSaveMatrixCategory(context.Background(), SaveMatrixCategoryInput{
		Access:   adminEditing,
		Category: matrix.Category{PhaseID: 1, CategoryType: matrix.TypeOutputs, Title: "Second outputs"},
	}, deps)
	if !errors.Is(err, matrix.ErrTypeTaken) {
		t.Fatalf("expected ErrTypeTaken, got %v", err)
	}
	for _, c := range m.calls {
		if c == "save category" {
			t.Fatal("expected no save request for a taken type")
		}
	}

	// The occupant itself may still be updated, and a free type may be added.
	if _, err := ExecuteSaveMatrixCategory(context.Background(), SaveMatrixCategoryInput{
		Access:   adminEditing,
		Category: matrix.Category{ID: 3, PhaseID: 1, CategoryType: matrix.TypeOutputs, Title: "Renamed"},
	}, deps); err != nil {
		t.Fatalf("update of occupant: %v", err)
	}
	res, err := ExecuteSaveMatrixCategory(context.Background(), SaveMatrixCategoryInput{
		Access:   adminEditing,
		Category: matrix.Category{PhaseID: 1, CategoryType: matrix.TypeOutcomes, Title: "Throughput"},
	}, deps)
	if err != nil || !res.Created {
		t.Fatalf("add of free type: created=%v err=%v", res.Created, err)
	}
}
