package submenu_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/submenu"
	"github.com/jmylchreest/kiwimenu/internal/testutil"
)

const poll = 200 * time.Millisecond

type fixture struct {
	loop    *testutil.Loop
	trigger *testutil.FakeTrigger
	sibling *testutil.FakeWidget
	menu    *testutil.FakeMenu
	overlay *testutil.FakeOverlay
	arbiter *submenu.Arbiter
	pointer *testutil.FakePointer
	popups  *testutil.PopupFactory
	opener  *testutil.FakeOpener
	records []recent.Record
	ctrl    *submenu.Controller
}

// newFixture lays out a trigger at (0,0)-(100,30) with the popout to its
// right at (140,0)-(300,200), leaving a 40px gap.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		loop:    testutil.NewLoop(),
		trigger: testutil.NewFakeTrigger(geometry.NewRect(0, 0, 100, 30)),
		sibling: testutil.NewFakeWidget("sibling", geometry.NewRect(0, 30, 100, 30)),
		overlay: &testutil.FakeOverlay{},
		arbiter: submenu.NewArbiter(nil),
		pointer: &testutil.FakePointer{},
		popups:  &testutil.PopupFactory{Rect: geometry.NewRect(140, 0, 160, 200)},
		opener:  &testutil.FakeOpener{},
		records: []recent.Record{
			{Title: "notes.txt", URI: "file:///home/ana/notes.txt", Timestamp: 200},
			{Title: "report.pdf", URI: "file:///home/ana/report.pdf", Timestamp: 100},
		},
	}
	f.menu = &testutil.FakeMenu{Rows: []submenu.Widget{f.trigger, f.sibling}}
	f.ctrl = f.newController(t, f.trigger, f.menu)
	return f
}

func (f *fixture) newController(t *testing.T, trigger *testutil.FakeTrigger, menu *testutil.FakeMenu) *submenu.Controller {
	t.Helper()
	c, err := submenu.NewController(submenu.Host{
		Loop:     f.loop,
		Trigger:  trigger,
		Parent:   menu,
		Overlay:  f.overlay,
		Arbiter:  f.arbiter,
		Pointer:  f.pointer,
		NewPopup: f.popups.New,
		Recent:   func() []recent.Record { return f.records },
		Opener:   f.opener,
	}, submenu.DefaultConfig(), nil)
	require.NoError(t, err)
	return c
}

// openByHover hovers the trigger and waits out the open delay.
func (f *fixture) openByHover(t *testing.T) *testutil.FakePopup {
	t.Helper()
	f.pointer.MoveTo(50, 15)
	f.trigger.Enter()
	f.loop.Advance(submenu.DefaultConfig().OpenDelay)
	require.Equal(t, submenu.Open, f.ctrl.State())
	return f.popups.Last()
}

func TestController_BridgeKeepsOpenThenOutsideCloses(t *testing.T) {
	f := newFixture(t)

	f.pointer.MoveTo(50, 15)
	f.trigger.Enter()
	assert.Equal(t, submenu.OpenPending, f.ctrl.State())

	f.loop.Advance(499 * time.Millisecond)
	assert.Equal(t, submenu.OpenPending, f.ctrl.State())
	assert.Empty(t, f.popups.Created)

	f.loop.Advance(time.Millisecond)
	require.Equal(t, submenu.Open, f.ctrl.State())
	popup := f.popups.Last()
	require.NotNil(t, popup)
	assert.Equal(t, 1, popup.Opened)
	assert.Equal(t, 1, f.overlay.Added)
	assert.Equal(t, f.records, popup.Items)

	// Into the gap between trigger and popout.
	f.pointer.MoveTo(120, 15)
	f.trigger.Leave()
	f.loop.Advance(5 * poll)
	assert.Equal(t, submenu.Open, f.ctrl.State())

	_, st, ok := f.ctrl.Session().LastClassification()
	require.True(t, ok)
	assert.Equal(t, geometry.Bridge, st)

	f.pointer.MoveTo(500, 500)
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonPointerLeft, f.ctrl.LastCloseReason())

	assert.Equal(t, 1, popup.DestroyCount)
	assert.Equal(t, 1, f.overlay.Removed)
	assert.Empty(t, f.overlay.Live)
	assert.Zero(t, popup.Connected())
	assert.Nil(t, f.ctrl.Session())
	owner, _ := f.arbiter.Active()
	assert.Nil(t, owner)
	assert.Zero(t, f.loop.Pending())
}

func TestController_TeardownIsIdempotent(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	f.ctrl.Close()
	f.ctrl.Close()
	f.menu.Close()
	f.ctrl.Dismiss()

	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, 1, popup.DestroyCount)
	assert.Equal(t, 1, f.overlay.Added)
	assert.Equal(t, 1, f.overlay.Removed)
	assert.Equal(t, submenu.ReasonExplicit, f.ctrl.LastCloseReason())
}

func TestController_ReenterWhilePendingDoesNotRestart(t *testing.T) {
	f := newFixture(t)

	f.trigger.Enter()
	f.loop.Advance(300 * time.Millisecond)
	f.trigger.Enter()
	f.loop.Advance(200 * time.Millisecond)

	assert.Equal(t, submenu.Open, f.ctrl.State())
	assert.Len(t, f.popups.Created, 1)
}

func TestController_LeaveWhilePendingCancels(t *testing.T) {
	f := newFixture(t)

	f.trigger.Enter()
	f.loop.Advance(200 * time.Millisecond)
	f.trigger.Leave()
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonTriggerLeft, f.ctrl.LastCloseReason())

	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Empty(t, f.popups.Created)
	assert.Zero(t, f.loop.Pending())
}

func TestController_ActivateOpensImmediately(t *testing.T) {
	f := newFixture(t)

	f.trigger.Activate()
	assert.Equal(t, submenu.Open, f.ctrl.State())
	assert.Len(t, f.popups.Created, 1)

	// A pending open from an earlier hover must not fire a second time.
	f2 := newFixture(t)
	f2.trigger.Enter()
	f2.loop.Advance(100 * time.Millisecond)
	f2.trigger.Activate()
	f2.loop.Advance(time.Second)
	assert.Equal(t, submenu.Open, f2.ctrl.State())
	assert.Len(t, f2.popups.Created, 1)
}

func TestController_PopupHoverCancelsClose(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	f.pointer.MoveTo(500, 500)
	f.trigger.Leave()
	f.loop.Advance(poll / 2)
	popup.Enter()
	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Open, f.ctrl.State())

	// Leaving the popout schedules the close again.
	popup.Leave()
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
}

func TestController_TriggerReenterCancelsClose(t *testing.T) {
	f := newFixture(t)
	f.openByHover(t)

	f.pointer.MoveTo(500, 500)
	f.trigger.Leave()
	f.trigger.Enter()
	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Open, f.ctrl.State())
}

func TestController_InsideStopsPolling(t *testing.T) {
	f := newFixture(t)
	f.openByHover(t)

	f.pointer.MoveTo(200, 100)
	f.trigger.Leave()
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Open, f.ctrl.State())
	assert.Zero(t, f.loop.Pending())

	// Poll has stopped, so moving away alone does not close.
	f.pointer.MoveTo(500, 500)
	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Open, f.ctrl.State())
}

func TestController_UnknownPointerIsOutside(t *testing.T) {
	f := newFixture(t)
	f.openByHover(t)

	f.pointer.Lose()
	f.trigger.Leave()
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
}

func TestController_UnmappedPopupIsOutside(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	popup.Mapped = false
	f.pointer.MoveTo(120, 15)
	f.trigger.Leave()
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
}

func TestController_GeometryIsReadLive(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	f.pointer.MoveTo(120, 15)
	f.trigger.Leave()
	f.loop.Advance(2 * poll)
	assert.Equal(t, submenu.Open, f.ctrl.State())

	// The popout moves down past the trigger; the same pointer position is now outside.
	popup.Rect = geometry.NewRect(140, 300, 160, 200)
	f.loop.Advance(poll)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
}

func TestController_SiblingHoverCloses(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)
	assert.Equal(t, 1, f.sibling.Connected())

	f.sibling.Enter()
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonSiblingHovered, f.ctrl.LastCloseReason())
	assert.Equal(t, 1, popup.DestroyCount)
	assert.Zero(t, f.sibling.Connected())
}

func TestController_ParentCloseCloses(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	f.menu.Close()
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonParentClosed, f.ctrl.LastCloseReason())
	assert.Equal(t, 1, popup.DestroyCount)

	// The controller outlives the parent closing and can open again.
	f.openByHover(t)
	assert.Len(t, f.popups.Created, 2)
}

func TestController_ParentCloseWhilePending(t *testing.T) {
	f := newFixture(t)

	f.trigger.Enter()
	f.menu.Close()
	assert.Equal(t, submenu.Closed, f.ctrl.State())

	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Empty(t, f.popups.Created)
}

func TestController_TriggerDestroyed(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 4, f.trigger.Connected())
	assert.Equal(t, 1, f.menu.Connected())

	popup := f.openByHover(t)
	f.trigger.Destroy()

	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonTriggerDestroyed, f.ctrl.LastCloseReason())
	assert.Equal(t, 1, popup.DestroyCount)
	assert.Zero(t, f.trigger.Connected())
	assert.Zero(t, f.menu.Connected())

	// Inert afterwards.
	f.ctrl.Open()
	f.ctrl.Destroy()
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Len(t, f.popups.Created, 1)
}

func TestController_ItemActivation(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	popup.ActivateItem(f.records[1])

	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonItemActivated, f.ctrl.LastCloseReason())
	assert.Equal(t, 1, f.menu.CloseCount)
	assert.Equal(t, []string{"file:///home/ana/report.pdf"}, f.opener.URIs)
	assert.Equal(t, 1, popup.DestroyCount)
}

func TestController_ItemActivationOpenerError(t *testing.T) {
	f := newFixture(t)
	f.opener.Err = assert.AnError
	popup := f.openByHover(t)

	popup.ActivateItem(f.records[0])
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Len(t, f.opener.URIs, 1)
}

func TestController_PopupDismissedByHost(t *testing.T) {
	f := newFixture(t)
	popup := f.openByHover(t)

	popup.SetOpen(false)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonPopupDismissed, f.ctrl.LastCloseReason())
	assert.Equal(t, 1, popup.DestroyCount)
}

func TestController_PopupFactoryError(t *testing.T) {
	f := newFixture(t)
	f.popups.Err = testutil.ErrPopup

	f.trigger.Enter()
	f.loop.Advance(time.Second)
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Zero(t, f.overlay.Added)
	owner, _ := f.arbiter.Active()
	assert.Nil(t, owner)

	f.popups.Err = nil
	f.trigger.Activate()
	assert.Equal(t, submenu.Open, f.ctrl.State())
}

func TestController_ExclusiveAcrossTriggers(t *testing.T) {
	f := newFixture(t)
	other := testutil.NewFakeTrigger(geometry.NewRect(0, 100, 100, 30))
	otherMenu := &testutil.FakeMenu{Rows: []submenu.Widget{other}}
	second := f.newController(t, other, otherMenu)

	f.trigger.Activate()
	first := f.popups.Last()
	require.Equal(t, submenu.Open, f.ctrl.State())

	other.Activate()
	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.ReasonPreempted, f.ctrl.LastCloseReason())
	assert.Equal(t, submenu.Open, second.State())
	assert.Equal(t, 1, first.DestroyCount)

	owner, tok := f.arbiter.Active()
	assert.Equal(t, second, owner)
	assert.Equal(t, second.Session().Token(), tok)
	assert.Len(t, f.overlay.Live, 1)
}

func TestController_HoverOtherTriggerPreempts(t *testing.T) {
	f := newFixture(t)
	other := testutil.NewFakeTrigger(geometry.NewRect(0, 100, 100, 30))
	otherMenu := &testutil.FakeMenu{Rows: []submenu.Widget{other}}
	second := f.newController(t, other, otherMenu)

	f.openByHover(t)
	other.Enter()

	assert.Equal(t, submenu.Closed, f.ctrl.State())
	assert.Equal(t, submenu.OpenPending, second.State())
}

func TestController_Refresh(t *testing.T) {
	f := newFixture(t)

	// No-op while closed.
	f.ctrl.Refresh()

	popup := f.openByHover(t)
	f.records = f.records[:1]
	f.ctrl.Refresh()
	assert.Len(t, popup.Items, 1)
}

func TestController_StateCallback(t *testing.T) {
	f := newFixture(t)

	var seen []submenu.State
	f.ctrl.SetStateCallback(func(s submenu.State) { seen = append(seen, s) })

	f.openByHover(t)
	f.ctrl.Close()

	assert.Equal(t, []submenu.State{submenu.OpenPending, submenu.Open, submenu.Closed}, seen)
}

func TestController_FreshSessionPerOpen(t *testing.T) {
	f := newFixture(t)

	f.openByHover(t)
	tok1 := f.ctrl.Session().Token()
	f.ctrl.Close()

	f.openByHover(t)
	tok2 := f.ctrl.Session().Token()

	assert.NotEmpty(t, tok1)
	assert.NotEqual(t, tok1, tok2)
	assert.Len(t, f.popups.Created, 2)
	assert.Equal(t, 1, f.popups.Created[0].DestroyCount)
	assert.Zero(t, f.popups.Created[1].DestroyCount)
}

func TestNewController_RequiresCollaborators(t *testing.T) {
	_, err := submenu.NewController(submenu.Host{}, submenu.DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", submenu.Closed.String())
	assert.Equal(t, "open-pending", submenu.OpenPending.String())
	assert.Equal(t, "open", submenu.Open.String())
	assert.Equal(t, "sibling-hovered", submenu.ReasonSiblingHovered.String())
}
