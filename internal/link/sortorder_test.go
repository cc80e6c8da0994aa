package link

import (
	"slices"
	"testing"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/palette"
)

var regionMatrix = matrixops.New([]float64{
	1, 2, 3, 4, 5, 6,
	6, 5, 4, 3, 2, 1,
	0, 0, 9, 1, 0, 0,
}, 3, 6)

func TestSortValues(t *testing.T) {
	tests := []struct {
		mode string
		want []float64
	}{
		{ModeCenterColumn, []float64{4, 3, 1}},
		{ModeRegion, []float64{3.5, 3.5, 5}},
		{ModeLeftBoundary, []float64{3, 4, 9}},
		{ModeRightBoundary, []float64{4, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, ok := SortValues(regionMatrix, tt.mode)
			if !ok {
				t.Fatal("SortValues() failed")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SortValues() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := SortValues(regionMatrix, "diagonal"); ok {
		t.Error("unknown mode should fail")
	}
	if _, ok := SortValues(matrixops.Matrix{}, ModeCenterColumn); ok {
		t.Error("empty matrix should fail")
	}
}

func TestSortValuesNarrowMatrix(t *testing.T) {
	m := matrixops.New([]float64{2, 1}, 2, 1)
	for _, mode := range Modes() {
		got, ok := SortValues(m, mode)
		if !ok || !slices.Equal(got, []float64{2, 1}) {
			t.Errorf("SortValues(%q) = %v, %v", mode, got, ok)
		}
	}
}

func TestModesMatchConfig(t *testing.T) {
	if !slices.Equal(Modes(), config.ValidSortModes()) {
		t.Errorf("Modes() = %v, config accepts %v", Modes(), config.ValidSortModes())
	}
}

func TestConstructSortOrderMatchesLocalSort(t *testing.T) {
	h := newHarness(t)
	l := NewSortOrderLink(h.options("c1", "a", "pileup", h.pools.SortOrder), regionMatrix, ModeRegion, true)

	order, ok := l.ConstructSortOrder()
	if !ok {
		t.Fatal("ConstructSortOrder() failed")
	}
	viaOrder, _ := matrixops.SortMatrixByIndex(regionMatrix, order.Values, order.Ascending)
	sorted, _ := l.SortedMatrix()
	if !slices.Equal(viaOrder.Data, sorted.Data) {
		t.Errorf("broadcast order sorts to %v, display is %v", viaOrder.Data, sorted.Data)
	}
}

func TestSetMode(t *testing.T) {
	h := newHarness(t)
	a := h.sortLink("c1", "a", regionMatrix)

	if err := a.SetMode("diagonal"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("SetMode(diagonal) error = %v, want ErrInvalidInput", err)
	}
	if err := a.SetMode(ModeLeftBoundary); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	order, _ := a.ConstructSortOrder()
	if !slices.Equal(order.Values, []float64{3, 4, 9}) {
		t.Errorf("order after SetMode = %v", order.Values)
	}
}

func TestRecipientSettingsChangeStopsSharing(t *testing.T) {
	h := newHarness(t)
	a := h.sortLink("c1", "a", matrixA)
	b := h.sortLink("c1", "b", matrixB)
	h.share(a, b)

	if err := a.SetMode(ModeRegion); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if a.Relationship().IsRecipient() {
		t.Error("changing the sort mode should end sharing")
	}
	if a.SelectedOrder() != ModeRegion {
		t.Errorf("SelectedOrder() = %q, want region", a.SelectedOrder())
	}
	if b.Relationship().IsDonor() {
		t.Error("donor should have been told")
	}
}

func TestAdoptRejectsMismatchedRowCount(t *testing.T) {
	h := newHarness(t)
	a := h.sortLink("c1", "a", matrixA)
	short := h.sortLink("c1", "s", matrixops.New([]float64{1, 2}, 2, 1))

	a.StartShare()
	h.click("c1", "s")

	if a.Relationship().IsRecipient() {
		t.Error("an order with the wrong number of rows must be rejected")
	}
	if short.Relationship().IsDonor() {
		t.Error("rejected donor should drop the recipient again")
	}
	if n, ok := h.rec.Last(); !ok || !errors.Is(n.Err, errors.ErrIncompatibleTarget) {
		t.Errorf("last notice = %+v, want incompatible target", n)
	}
}

func TestReloadedRowCountMismatchStopsSharing(t *testing.T) {
	h := newHarness(t)
	a := h.sortLink("c1", "a", matrixA)
	b := h.sortLink("c1", "b", matrixB)
	h.share(a, b)

	a.SetMatrix(matrixops.New([]float64{1, 2, 1, 2, 3, 2, 3, 4, 3, 4, 5, 4}, 4, 3))

	if a.Relationship().IsRecipient() || a.Relationship().TargetID != "" {
		t.Errorf("recipient relationship = %+v, want cleared", a.Relationship())
	}
	if b.Relationship().IsDonor() || b.Relationship().IndicatorColor != palette.None {
		t.Errorf("donor relationship = %+v, want released", b.Relationship())
	}
	if _, ok := a.SortedMatrix(); !ok {
		t.Error("SortedMatrix() should fall back to the widget's own order")
	}
	if n, ok := h.rec.Last(); !ok || !errors.Is(n.Err, errors.ErrIncompatibleTarget) {
		t.Errorf("last notice = %+v, want incompatible target", n)
	}
}

func TestReloadedMatchingRowsKeepsSharing(t *testing.T) {
	h := newHarness(t)
	a := h.sortLink("c1", "a", matrixA)
	b := h.sortLink("c1", "b", matrixB)
	h.share(a, b)

	a.SetMatrix(matrixC)

	if a.Relationship().TargetID != "b" {
		t.Errorf("TargetID = %q, want b", a.Relationship().TargetID)
	}
	if h.rec.Len() != 0 {
		t.Errorf("notices = %+v, want none", h.rec.Notices())
	}
}
