package game_test

import (
	"testing"

	"ohhell-service/internal/game"
)

func intPtr(v int) *int { return &v }

func suitPtr(s game.Suit) *game.Suit { return &s }

func TestIsLegalBidRange(t *testing.T) {
	if game.IsLegalBid(-1, 3, nil, false) {
		t.Fatal("negative bid accepted")
	}
	if game.IsLegalBid(4, 3, nil, false) {
		t.Fatal("bid above hand size accepted")
	}
	if !game.IsLegalBid(0, 3, nil, false) {
		t.Fatal("zero bid rejected")
	}
	if !game.IsLegalBid(3, 3, nil, false) {
		t.Fatal("maximum bid rejected")
	}
}

func TestDealerHookRule(t *testing.T) {
	// Three players, three cards each, earlier bids 1 and 1: the dealer may
	// not bid 1, since that would let everyone come home exact.
	prior := []int{1, 1}
	if game.IsLegalBid(1, 3, prior, true) {
		t.Fatal("dealer bid summing to hand size accepted")
	}
	if !game.IsLegalBid(0, 3, prior, true) {
		t.Fatal("dealer bid 0 rejected")
	}
	if !game.IsLegalBid(2, 3, prior, true) {
		t.Fatal("dealer bid 2 rejected")
	}
	// Non-dealers are never hooked.
	if !game.IsLegalBid(1, 3, []int{1}, false) {
		t.Fatal("non-dealer bid rejected")
	}
}

func TestBlockedBidForDealer(t *testing.T) {
	blocked, ok := game.BlockedBidForDealer(3, []int{1, 1})
	if !ok || blocked != 1 {
		t.Fatalf("got blocked=%d ok=%v, want 1 true", blocked, ok)
	}
	// Prior bids already exceed the hand size: every bid is open.
	if _, ok := game.BlockedBidForDealer(3, []int{2, 2}); ok {
		t.Fatal("expected nothing blocked when prior bids exceed hand size")
	}
}

func TestIsLegalPlayFollowSuit(t *testing.T) {
	hand := []game.Card{
		game.NewCard(game.SuitHearts, "5"),
		game.NewCard(game.SuitClubs, "A"),
	}
	lead := suitPtr(game.SuitHearts)

	if !game.IsLegalPlay(hand[0], hand, lead) {
		t.Fatal("following suit rejected")
	}
	if game.IsLegalPlay(hand[1], hand, lead) {
		t.Fatal("off-suit play accepted while holding lead suit")
	}
	// Void in the lead suit: anything goes.
	voidHand := []game.Card{game.NewCard(game.SuitClubs, "A")}
	if !game.IsLegalPlay(voidHand[0], voidHand, lead) {
		t.Fatal("discard rejected despite void")
	}
	// Leading: any card.
	if !game.IsLegalPlay(hand[1], hand, nil) {
		t.Fatal("lead rejected")
	}
}

func TestLegalPlays(t *testing.T) {
	hand := []game.Card{
		game.NewCard(game.SuitHearts, "5"),
		game.NewCard(game.SuitHearts, "9"),
		game.NewCard(game.SuitClubs, "A"),
	}
	legal := game.LegalPlays(hand, suitPtr(game.SuitHearts))
	if len(legal) != 2 {
		t.Fatalf("expected 2 legal plays, got %d", len(legal))
	}
	for _, c := range legal {
		if c.Suit != game.SuitHearts {
			t.Fatalf("off-suit card %s marked legal", c.ID)
		}
	}
}

func TestTrickWinnerTrumpBeatsAces(t *testing.T) {
	trick := []game.TrickCard{
		{Card: game.NewCard(game.SuitClubs, "A"), PlayerID: "p1"},
		{Card: game.NewCard(game.SuitHearts, "2"), PlayerID: "p2"},
		{Card: game.NewCard(game.SuitClubs, "K"), PlayerID: "p3"},
	}
	if w := game.TrickWinner(trick, suitPtr(game.SuitHearts)); w != "p2" {
		t.Fatalf("winner %s, want p2 (lowest trump beats off-trump ace)", w)
	}
}

func TestTrickWinnerFollowsLeadWithoutTrump(t *testing.T) {
	trick := []game.TrickCard{
		{Card: game.NewCard(game.SuitClubs, "7"), PlayerID: "p1"},
		{Card: game.NewCard(game.SuitSpades, "A"), PlayerID: "p2"},
		{Card: game.NewCard(game.SuitClubs, "J"), PlayerID: "p3"},
	}
	// No trump round: the off-lead ace is just a discard.
	if w := game.TrickWinner(trick, nil); w != "p3" {
		t.Fatalf("winner %s, want p3", w)
	}
	// Spades trump flips it.
	if w := game.TrickWinner(trick, suitPtr(game.SuitSpades)); w != "p2" {
		t.Fatalf("winner %s, want p2", w)
	}
}

func TestTrickWinnerHighestTrumpWins(t *testing.T) {
	trump := suitPtr(game.SuitDiamonds)
	trick := []game.TrickCard{
		{Card: game.NewCard(game.SuitDiamonds, "9"), PlayerID: "p1"},
		{Card: game.NewCard(game.SuitDiamonds, "Q"), PlayerID: "p2"},
		{Card: game.NewCard(game.SuitDiamonds, "3"), PlayerID: "p3"},
	}
	if w := game.TrickWinner(trick, trump); w != "p2" {
		t.Fatalf("winner %s, want p2", w)
	}
}

func TestScoreRound(t *testing.T) {
	players := []*game.Player{
		{ID: "exact", Bid: intPtr(2), TricksWon: 2},
		{ID: "over", Bid: intPtr(1), TricksWon: 2},
		{ID: "under", Bid: intPtr(3), TricksWon: 1},
		{ID: "zero", Bid: intPtr(0), TricksWon: 0},
	}
	scores := game.ScoreRound(players)

	if scores["exact"] != 12 {
		t.Fatalf("exact bid scored %d, want 12", scores["exact"])
	}
	if scores["over"] != 0 || scores["under"] != 0 {
		t.Fatalf("missed bids scored %d/%d, want 0/0", scores["over"], scores["under"])
	}
	if scores["zero"] != 10 {
		t.Fatalf("exact zero bid scored %d, want 10", scores["zero"])
	}
}
