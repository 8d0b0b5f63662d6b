package panel

import (
	"testing"

	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
)

func event(kind EventKind, window uint32, visible, on bool) TaskEvent {
	return TaskEvent{
		Panel: "test",
		Kind:  kind,
		Task:  taskbar.TaskInfo{Window: window, Visible: visible},
		On:    on,
	}
}

func TestPanelOrderFollowsEvents(t *testing.T) {
	p := New("test", Strip{Width: 100, Height: 20, MaxCellWidth: 50, MaxCellHeight: 20})

	p.apply(event(EventAdded, 1, true, true))
	p.apply(event(EventAdded, 2, true, true))
	p.apply(event(EventAdded, 3, true, true))
	p.apply(event(EventRemoved, 2, false, false))

	order := p.Order()
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("order = %v, want [1 3]", order)
	}
	if cells := p.Cells(); len(cells) != 2 {
		t.Errorf("cells = %d, want 2", len(cells))
	}
}

func TestPanelHiddenTaskNotLaidOut(t *testing.T) {
	p := New("test", Strip{Width: 100, Height: 20})

	p.apply(event(EventAdded, 1, false, false))
	if len(p.Order()) != 0 {
		t.Error("hidden task entered the cell order")
	}

	p.apply(event(EventVisibility, 1, true, true))
	if len(p.Order()) != 1 {
		t.Error("task not inserted on visibility gain")
	}

	p.apply(event(EventVisibility, 1, false, false))
	if len(p.Order()) != 0 {
		t.Error("task not dropped on visibility loss")
	}
}

func TestPanelInsertIdempotent(t *testing.T) {
	p := New("test", Strip{Width: 100, Height: 20})

	p.apply(event(EventAdded, 1, true, true))
	p.apply(event(EventVisibility, 1, true, true))

	if len(p.Order()) != 1 {
		t.Errorf("order = %v, want single entry", p.Order())
	}
}

func TestPanelPushNeverBlocks(t *testing.T) {
	p := New("test", Strip{Width: 100, Height: 20})
	task := &taskbar.Task{}

	// No Serve loop draining; the queue fills and further pushes drop.
	for i := 0; i < eventQueueSize*2; i++ {
		p.TaskTitleChanged(task)
	}
}
