package link

import (
	"testing"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/notify"
)

var (
	scaleA = matrixops.New([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 2, 5)
	scaleB = matrixops.New([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 2, 5)
)

func (h *harness) scaleLink(collectionID, widgetID, widgetType, colormap string, m matrixops.Matrix) *ValueScaleLink {
	opts := h.options(collectionID, widgetID, widgetType, h.pools.ValueScale)
	return NewValueScaleLink(opts, m, colormap, DefaultLowerPerMil, DefaultUpperPerMil)
}

func TestOwnValueScale(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)

	// ceil(9*10/1000) = 1 and ceil(9*990/1000) = 9
	got, ok := a.ValueScale()
	if !ok {
		t.Fatal("ValueScale() failed")
	}
	want := event.ValueScale{Min: 2, Max: 10, Colormap: "fall"}
	if got != want {
		t.Errorf("ValueScale() = %+v, want %+v", got, want)
	}

	if err := a.SetScale(0, 5); err != nil {
		t.Fatalf("SetScale() error = %v", err)
	}
	if got, _ := a.ValueScale(); got.Min != 0 || got.Max != 5 {
		t.Errorf("ValueScale() after SetScale = %+v", got)
	}
	a.ResetScale()
	if got, _ := a.ValueScale(); got != want {
		t.Errorf("ValueScale() after ResetScale = %+v, want %+v", got, want)
	}

	if err := a.SetScale(5, 1); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("SetScale(5, 1) error = %v, want ErrInvalidInput", err)
	}
}

func TestValueScaleRequiresSameWidgetType(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	b := h.scaleLink("c1", "b", "pileup", "fall", scaleB)
	s := h.scaleLink("c1", "s", "stackup", "fall", scaleB)

	a.StartShare()
	if b.Relationship().State != SelectableTarget {
		t.Error("widget of the same type should be selectable")
	}
	if s.Relationship().State != Idle {
		t.Error("widget of another type must not be selectable")
	}

	h.click("c1", "s")
	if a.Relationship().IsRecipient() || s.Relationship().IsDonor() {
		t.Error("clicking an incompatible widget should cancel")
	}
}

func TestValueScaleShareAndUpdate(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	b := h.scaleLink("c1", "b", "pileup", "fall", scaleB)

	a.StartShare()
	h.click("c1", "b")

	if a.Relationship().TargetID != "b" || !a.Shared() {
		t.Fatalf("relationship = %+v, want recipient of b", a.Relationship())
	}
	got, _ := a.ValueScale()
	want, _ := b.ValueScale()
	if got != want {
		t.Errorf("recipient scale = %+v, want %+v", got, want)
	}

	b.SetScale(-1, 1)
	if got, _ := a.ValueScale(); got.Min != -1 || got.Max != 1 {
		t.Errorf("recipient scale after donor update = %+v", got)
	}
	if h.pools.ValueScale.UsedCount() != 1 || h.pools.SortOrder.UsedCount() != 0 {
		t.Error("value-scale sharing must only use the value-scale pool")
	}

	a.StopShare()
	if got, _ := a.ValueScale(); got.Min != 2 || got.Max != 10 {
		t.Errorf("scale after stop = %+v, want own scale", got)
	}
	if h.pools.ValueScale.UsedCount() != 0 {
		t.Error("color should be released")
	}
}

func TestValueScaleColormapMismatch(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	b := h.scaleLink("c1", "b", "pileup", "red", scaleB)

	a.StartShare()
	h.click("c1", "b")

	if a.Relationship().IsRecipient() {
		t.Error("recipient with another colormap must reject the scale")
	}
	if b.Relationship().IsDonor() || h.pools.ValueScale.UsedCount() != 0 {
		t.Error("rejected share must not leave the donor counted")
	}
	n, ok := h.rec.Last()
	if !ok || !errors.Is(n.Err, errors.ErrIncompatibleTarget) || n.Level != notify.LevelInfo {
		t.Errorf("last notice = %+v, want info about incompatible target", n)
	}
}

func TestDonorColormapChangeEndsSharing(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	b := h.scaleLink("c1", "b", "pileup", "fall", scaleB)
	a.StartShare()
	h.click("c1", "b")

	b.SetColormap("blues")

	if a.Relationship().IsRecipient() {
		t.Error("recipient should stop sharing when the donor's colormap changes")
	}
	if b.Relationship().IsDonor() {
		t.Error("donor should lose the recipient")
	}
}

func TestRecipientSetScaleStopsSharing(t *testing.T) {
	h := newHarness(t)
	a := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	b := h.scaleLink("c1", "b", "pileup", "fall", scaleB)
	a.StartShare()
	h.click("c1", "b")

	if err := a.SetScale(3, 4); err != nil {
		t.Fatalf("SetScale() error = %v", err)
	}
	if a.Shared() || b.Relationship().IsDonor() {
		t.Error("a manual scale should end sharing")
	}
	if got, _ := a.ValueScale(); got.Min != 3 || got.Max != 4 {
		t.Errorf("ValueScale() = %+v", got)
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	h := newHarness(t)
	sa := h.sortLink("c1", "a", matrixA)
	sb := h.sortLink("c1", "b", matrixB)
	va := h.scaleLink("c1", "a", "pileup", "fall", scaleA)
	vb := h.scaleLink("c1", "b", "pileup", "fall", scaleB)

	sa.StartShare()
	if vb.Relationship().State != Idle {
		t.Error("sort-order selection must not affect value-scale links")
	}
	h.click("c1", "b")

	if !sa.Relationship().IsRecipient() || !sb.Relationship().IsDonor() {
		t.Fatal("sort order should be shared")
	}
	if va.Relationship().IsRecipient() || vb.Relationship().IsDonor() {
		t.Error("value scale should not be shared")
	}
}
