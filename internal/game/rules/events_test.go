package rules

import (
	"testing"
)

func TestEventBusSubscribeFiltered(t *testing.T) {
	bus := NewEventBus()

	playedCount := 0
	diedCount := 0

	handle := bus.Subscribe(func(e Event) {
		playedCount++
	}, EventCardPlayed)
	bus.Subscribe(func(e Event) {
		diedCount++
	}, EventMinionDied, EventWeaponDestroyed)

	bus.Publish(NewEvent(EventCardPlayed, "card1", "card1", "player1"))
	if playedCount != 1 {
		t.Fatalf("expected played count 1, got %d", playedCount)
	}
	if diedCount != 0 {
		t.Fatalf("expected died count 0, got %d", diedCount)
	}

	bus.Publish(NewEventWithAmount(EventMinionDied, "m1", "m1", "player1", 0))
	if diedCount != 1 {
		t.Fatalf("expected died count 1, got %d", diedCount)
	}

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventCardPlayed, "card2", "card2", "player1"))
	if playedCount != 1 {
		t.Fatalf("expected played count to stay 1 after unsubscribe, got %d", playedCount)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var seen []EventType
	handle := bus.Subscribe(func(e Event) {
		seen = append(seen, e.Type)
	})
	if handle < 0 {
		t.Fatalf("expected valid handle, got %d", handle)
	}

	bus.Publish(NewEvent(EventBeginTurn, "", "", "player1"))
	bus.Publish(NewEventWithAmount(EventDamaged, "m1", "m2", "player2", 3))

	if len(seen) != 2 || seen[0] != EventBeginTurn || seen[1] != EventDamaged {
		t.Fatalf("unexpected events %v", seen)
	}
}

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	first := bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") }, EventBeginTurn)
	bus.Subscribe(func(Event) { order = append(order, "third") })

	bus.Publish(NewEvent(EventBeginTurn, "", "", "player1"))
	bus.Unsubscribe(first)
	bus.Publish(NewEvent(EventBeginTurn, "", "", "player1"))

	want := []string{"first", "second", "third", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestEventBusNilListener(t *testing.T) {
	bus := NewEventBus()
	if h := bus.Subscribe(nil); h != -1 {
		t.Fatalf("expected -1 for nil listener, got %d", h)
	}
	if h := bus.Subscribe(nil, EventAttack); h != -1 {
		t.Fatalf("expected -1 for nil filtered listener, got %d", h)
	}
	bus.Unsubscribe(42)

	var nilBus *EventBus
	nilBus.Publish(NewEvent(EventAttack, "", "", ""))
}

func TestNewEventWithAmount(t *testing.T) {
	evt := NewEventWithAmount(EventHealed, "hero", "src", "p1", 4)
	if evt.Amount != 4 || evt.TargetID != "hero" || evt.SourceID != "src" || evt.PlayerID != "p1" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}
