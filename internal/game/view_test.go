package game_test

import (
	"testing"

	"ohhell-service/internal/game"

	"github.com/google/go-cmp/cmp"
)

func TestViewRedactsOtherHands(t *testing.T) {
	room, ids := newTestRoom(t, 2, testOptions())
	mustAct(t, room, ids[0], "start-game", nil)

	mine := room.View(ids[0])
	if len(mine.Hand) != 3 {
		t.Fatalf("own hand holds %d cards, want 3", len(mine.Hand))
	}
	if mine.MyIndex != 0 {
		t.Fatalf("myIndex = %d, want 0", mine.MyIndex)
	}
	for i, p := range mine.Players {
		if p.CardCount != 3 {
			t.Fatalf("seat %d shows %d cards, want a count of 3", i, p.CardCount)
		}
	}

	// Two viewers never see the same card.
	held := make(map[string]bool, len(mine.Hand))
	for _, c := range mine.Hand {
		held[c.ID] = true
	}
	other := room.View(ids[1])
	for _, c := range other.Hand {
		if held[c.ID] {
			t.Fatalf("card %s appears in both hands", c.ID)
		}
	}
	if other.MyIndex != 1 {
		t.Fatalf("myIndex = %d, want 1", other.MyIndex)
	}
}

func TestViewSeatFlags(t *testing.T) {
	room, ids := newTestRoom(t, 2, testOptions())
	mustAct(t, room, ids[0], "start-game", nil)

	v := room.View(ids[0])
	for i, p := range v.Players {
		if (i == v.DealerIndex) != p.IsDealer {
			t.Fatalf("seat %d dealer flag %v with dealer index %d", i, p.IsDealer, v.DealerIndex)
		}
		if (i == v.CurrentTurnIndex) != p.IsCurrentTurn {
			t.Fatalf("seat %d turn flag %v with turn index %d", i, p.IsCurrentTurn, v.CurrentTurnIndex)
		}
	}
}

func TestViewUnknownPlayer(t *testing.T) {
	room, ids := newTestRoom(t, 2, testOptions())
	mustAct(t, room, ids[0], "start-game", nil)

	v := room.View("stranger")
	if len(v.Hand) != 0 {
		t.Fatalf("stranger sees %d cards", len(v.Hand))
	}
	if v.MyIndex != -1 {
		t.Fatalf("myIndex = %d, want -1", v.MyIndex)
	}
	for i, p := range v.Players {
		if p.CardCount != 3 {
			t.Fatalf("seat %d shows %d cards to a stranger, want a count of 3", i, p.CardCount)
		}
	}
}

func TestViewIsACopy(t *testing.T) {
	room, ids := newTestRoom(t, 2, testOptions())
	mustAct(t, room, ids[0], "start-game", nil)

	before := room.View(ids[0])
	tampered := room.View(ids[0])
	tampered.Scores[ids[0]] = 999
	tampered.Hand[0] = game.Card{}
	tampered.Players[0].Name = "tampered"

	after := room.View(ids[0])
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("view mutation leaked into the room (-before +after):\n%s", diff)
	}
}
