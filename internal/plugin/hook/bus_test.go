package hook

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/domain"
)

func testBus() *Bus {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewBus(log)
}

func TestEmitRegistrationOrder(t *testing.T) {
	bus := testBus()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		_, err := bus.On(KindTaskCreated, func(p Payload) (HandlerResult, error) {
			order = append(order, i)
			return HandlerResult{}, nil
		}, "")
		if err != nil {
			t.Fatalf("On() error = %v", err)
		}
	}

	bus.Emit(&TaskCreated{Task: domain.Task{ID: "t1"}})

	if !reflect.DeepEqual(order, []int{1, 2, 3}) {
		t.Errorf("handler order = %v, want [1 2 3]", order)
	}
}

func TestCancellationStopsChain(t *testing.T) {
	bus := testBus()

	var ran []string
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		ran = append(ran, "h1")
		return HandlerResult{Message: "h1 saw it"}, nil
	}, "p1")
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		ran = append(ran, "h2")
		return HandlerResult{Cancel: true, Reason: "duplicate task"}, nil
	}, "p2")
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		ran = append(ran, "h3")
		return HandlerResult{Message: "never"}, nil
	}, "p3")

	res := bus.Emit(&TaskCreating{CreateParams: map[string]any{"content": "x"}})

	if !res.Cancelled {
		t.Error("Cancelled = false, want true")
	}
	if res.Reason != "duplicate task" {
		t.Errorf("Reason = %q, want %q", res.Reason, "duplicate task")
	}
	if !reflect.DeepEqual(ran, []string{"h1", "h2"}) {
		t.Errorf("ran = %v, handler 3 must never execute", ran)
	}
	if !reflect.DeepEqual(res.Messages, []string{"h1 saw it"}) {
		t.Errorf("Messages = %v, want only handler 1's", res.Messages)
	}
}

func TestWaterfallMergesUpdates(t *testing.T) {
	bus := testBus()

	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Update: map[string]any{"priority": 4}}, nil
	}, "p1")
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		// Handler 2 must observe handler 1's edit.
		wf := p.(Waterfaller)
		if wf.Params()["priority"] != 4 {
			t.Errorf("handler 2 params = %v, want priority=4 visible", wf.Params())
		}
		return HandlerResult{Update: map[string]any{"labels": []string{"x"}}}, nil
	}, "p2")

	res := bus.Emit(&TaskCreating{CreateParams: map[string]any{"content": "buy milk"}})

	if res.Params["priority"] != 4 {
		t.Errorf("merged priority = %v, want 4", res.Params["priority"])
	}
	if labels, ok := res.Params["labels"].([]string); !ok || len(labels) != 1 || labels[0] != "x" {
		t.Errorf("merged labels = %v, want [x]", res.Params["labels"])
	}
	if res.Params["content"] != "buy milk" {
		t.Errorf("original params lost: %v", res.Params)
	}
}

func TestWaterfallOnZeroValuePayload(t *testing.T) {
	bus := testBus()

	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Update: map[string]any{"priority": 4}}, nil
	}, "p1")
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		wf := p.(Waterfaller)
		if wf.Params()["priority"] != 4 {
			t.Errorf("handler 2 params = %v, want priority=4 visible", wf.Params())
		}
		return HandlerResult{}, nil
	}, "p2")

	// A payload built with no params at all must still waterfall.
	res := bus.Emit(&TaskCreating{})

	if res.Cancelled {
		t.Error("Cancelled = true, want false")
	}
	if res.Params["priority"] != 4 {
		t.Errorf("merged priority = %v, want 4", res.Params["priority"])
	}
}

func TestHandlerErrorIsContained(t *testing.T) {
	bus := testBus()

	bus.On(KindTaskCompleted, func(p Payload) (HandlerResult, error) {
		return HandlerResult{}, errors.New("backend unreachable")
	}, "broken")
	bus.On(KindTaskCompleted, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Message: "still ran"}, nil
	}, "healthy")

	res := bus.Emit(&TaskCompleted{Task: domain.Task{ID: "t1"}})

	if res.Cancelled {
		t.Error("after-event must never be cancelled by a failing handler")
	}
	if !reflect.DeepEqual(res.Messages, []string{"still ran"}) {
		t.Errorf("Messages = %v, want [still ran]", res.Messages)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := testBus()

	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		panic("plugin bug")
	}, "broken")
	bus.On(KindTaskCreating, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Message: "survived"}, nil
	}, "healthy")

	res := bus.Emit(&TaskCreating{CreateParams: map[string]any{}})

	if res.Cancelled {
		t.Error("panic must not cancel the action")
	}
	if !reflect.DeepEqual(res.Messages, []string{"survived"}) {
		t.Errorf("Messages = %v, want [survived]", res.Messages)
	}
}

func TestCancelIgnoredForAfterEvents(t *testing.T) {
	bus := testBus()

	bus.On(KindTaskCreated, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Cancel: true, Reason: "too late"}, nil
	}, "p1")
	bus.On(KindTaskCreated, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Message: "observed"}, nil
	}, "p2")

	res := bus.Emit(&TaskCreated{Task: domain.Task{ID: "t1"}})

	if res.Cancelled {
		t.Error("after-events cannot be cancelled")
	}
	if len(res.Messages) != 1 {
		t.Errorf("Messages = %v, remaining handlers must still run", res.Messages)
	}
}

func TestOff(t *testing.T) {
	bus := testBus()

	id, err := bus.On(KindViewChanged, func(p Payload) (HandlerResult, error) {
		return HandlerResult{Message: "hi"}, nil
	}, "p1")
	if err != nil {
		t.Fatal(err)
	}

	if !bus.Off(KindViewChanged, id) {
		t.Error("Off() = false, want true")
	}
	if bus.Off(KindViewChanged, id) {
		t.Error("second Off() = true, want false")
	}

	res := bus.Emit(&ViewChanged{View: "today"})
	if len(res.Messages) != 0 {
		t.Errorf("Messages = %v, want none after Off", res.Messages)
	}
}

func TestRemoveAllForOwner(t *testing.T) {
	bus := testBus()

	handler := func(p Payload) (HandlerResult, error) {
		return HandlerResult{Message: "m"}, nil
	}
	bus.On(KindTaskCreated, handler, "mine")
	bus.On(KindTaskCompleted, handler, "mine")
	bus.On(KindTaskCreated, handler, "other")

	if n := bus.RemoveAllForOwner("mine"); n != 2 {
		t.Errorf("RemoveAllForOwner() = %d, want 2", n)
	}
	if n := bus.Count(KindTaskCompleted); n != 0 {
		t.Errorf("Count(task.completed) = %d, want 0", n)
	}
	if n := bus.Count(KindTaskCreated); n != 1 {
		t.Errorf("Count(task.created) = %d, want 1 (other plugin's handler)", n)
	}

	// Empty owner never matches host registrations.
	bus.On(KindTaskCreated, handler, "")
	if n := bus.RemoveAllForOwner(""); n != 0 {
		t.Errorf("RemoveAllForOwner(\"\") = %d, want 0", n)
	}
}

func TestOnRejectsUnknownKind(t *testing.T) {
	bus := testBus()

	if _, err := bus.On(Kind("no.such.event"), func(p Payload) (HandlerResult, error) {
		return HandlerResult{}, nil
	}, ""); err == nil {
		t.Error("On() with unknown kind should fail")
	}
	if _, err := bus.On(KindTaskCreated, nil, ""); err == nil {
		t.Error("On() with nil handler should fail")
	}
}

func TestKindClassification(t *testing.T) {
	if !KindTaskCreating.Before() {
		t.Error("task.creating must be a before-event")
	}
	if KindTaskCreated.Before() {
		t.Error("task.created must be an after-event")
	}
	if Kind("bogus").Valid() {
		t.Error("bogus kind must be invalid")
	}
}
