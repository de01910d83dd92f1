package game_test

import (
	"math/rand"
	"testing"

	"ohhell-service/internal/game"
)

func botState(cardsPerRound int, trump *game.Suit, bot *game.Player, others ...*game.Player) *game.GameState {
	players := append([]*game.Player{bot}, others...)
	return &game.GameState{
		RoomID:        "BOTT",
		Players:       players,
		Phase:         game.PhaseBidding,
		CardsPerRound: cardsPerRound,
		TrumpSuit:     trump,
		Scores:        map[string]int{},
	}
}

func TestDecideBidIsAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	deck := game.NewDeck()
	game.Shuffle(deck, rng)

	for seats := 3; seats <= 7; seats++ {
		hands, stub := game.Deal(deck, seats, seats)
		trump, _ := game.DetermineTrump(stub)
		suit := trump.Suit

		bot := &game.Player{ID: "bot-1", IsBot: true, Hand: hands[0]}
		others := make([]*game.Player, 0, seats-1)
		for i := 1; i < seats; i++ {
			others = append(others, &game.Player{ID: "p", Hand: hands[i]})
		}
		state := botState(seats, &suit, bot, others...)

		bid := game.DecideBid(state, bot)
		if !game.IsLegalBid(bid, seats, nil, false) {
			t.Fatalf("seats=%d: illegal bid %d", seats, bid)
		}
	}
}

func TestDecideBidRespectsHook(t *testing.T) {
	// One off-suit ace estimates a single trick; with prior bids 1 and 1 the
	// dealer is hooked off exactly 1 and lands on 2 (up before down).
	trump := game.SuitHearts
	p1 := &game.Player{ID: "p1", Bid: intPtr(1)}
	p2 := &game.Player{ID: "p2", Bid: intPtr(1)}
	bot := &game.Player{ID: "bot-1", IsBot: true, Hand: []game.Card{
		game.NewCard(game.SuitSpades, "A"),
		game.NewCard(game.SuitClubs, "3"),
		game.NewCard(game.SuitDiamonds, "4"),
	}}
	state := &game.GameState{
		RoomID:        "BOTT",
		Players:       []*game.Player{p1, p2, bot},
		Phase:         game.PhaseBidding,
		CardsPerRound: 3,
		TrumpSuit:     &trump,
		DealerIndex:   2,
		Scores:        map[string]int{},
	}

	bid := game.DecideBid(state, bot)
	if bid == 1 {
		t.Fatal("dealer bot took the hooked bid")
	}
	if bid != 2 {
		t.Fatalf("got bid %d, want 2", bid)
	}
}

func TestDecideCardOnlyLegalOption(t *testing.T) {
	trump := game.SuitHearts
	bot := &game.Player{ID: "bot-1", IsBot: true, Bid: intPtr(1), Hand: []game.Card{
		game.NewCard(game.SuitClubs, "4"),
		game.NewCard(game.SuitSpades, "9"),
	}}
	leader := &game.Player{ID: "p1"}
	state := botState(2, &trump, bot, leader)
	state.Phase = game.PhasePlaying
	state.CurrentTrick = []game.TrickCard{
		{Card: game.NewCard(game.SuitClubs, "7"), PlayerID: "p1"},
	}

	got := game.DecideCard(state, bot, rand.New(rand.NewSource(1)))
	if got != "clubs-4" {
		t.Fatalf("played %s, want the forced clubs-4", got)
	}
}

func TestDecideCardLeadsSureWinnerWhenNeedingTricks(t *testing.T) {
	trump := game.SuitHearts
	bot := &game.Player{ID: "bot-1", IsBot: true, Bid: intPtr(1), TricksWon: 0, Hand: []game.Card{
		game.NewCard(game.SuitSpades, "A"),
		game.NewCard(game.SuitClubs, "2"),
	}}
	state := botState(2, &trump, bot, &game.Player{ID: "p1"}, &game.Player{ID: "p2"})
	state.Phase = game.PhasePlaying

	got := game.DecideCard(state, bot, rand.New(rand.NewSource(1)))
	if got != "spades-A" {
		t.Fatalf("led %s, want the unbeatable spades-A", got)
	}
}

func TestDecideCardDumpsWhenAvoidingTricks(t *testing.T) {
	trump := game.SuitHearts
	bot := &game.Player{ID: "bot-1", IsBot: true, Bid: intPtr(0), TricksWon: 0, Hand: []game.Card{
		game.NewCard(game.SuitSpades, "2"),
		game.NewCard(game.SuitSpades, "K"),
		game.NewCard(game.SuitClubs, "A"),
		game.NewCard(game.SuitHearts, "5"),
	}}
	state := botState(4, &trump, bot, &game.Player{ID: "p1"}, &game.Player{ID: "p2"})
	state.Phase = game.PhasePlaying

	// Leading on a zero bid: lowest card of the longest non-trump suit.
	got := game.DecideCard(state, bot, rand.New(rand.NewSource(1)))
	if got != "spades-2" {
		t.Fatalf("led %s, want spades-2", got)
	}
}

func TestDecideCardDucksUnderTrumpedTrick(t *testing.T) {
	trump := game.SuitHearts
	bot := &game.Player{ID: "bot-1", IsBot: true, Bid: intPtr(2), TricksWon: 0, Hand: []game.Card{
		game.NewCard(game.SuitClubs, "5"),
		game.NewCard(game.SuitClubs, "A"),
	}}
	state := botState(2, &trump, bot, &game.Player{ID: "p1"}, &game.Player{ID: "p2"})
	state.Phase = game.PhasePlaying
	state.CurrentTrick = []game.TrickCard{
		{Card: game.NewCard(game.SuitClubs, "7"), PlayerID: "p1"},
		{Card: game.NewCard(game.SuitHearts, "3"), PlayerID: "p2"},
	}

	// The trick is already trumped; even needing tricks the ace is wasted.
	got := game.DecideCard(state, bot, rand.New(rand.NewSource(1)))
	if got != "clubs-5" {
		t.Fatalf("played %s, want the duck clubs-5", got)
	}
}

func TestDecideCardRuffsWhenVoidAndNeeding(t *testing.T) {
	trump := game.SuitHearts
	bot := &game.Player{ID: "bot-1", IsBot: true, Bid: intPtr(1), TricksWon: 0, Hand: []game.Card{
		game.NewCard(game.SuitHearts, "4"),
		game.NewCard(game.SuitSpades, "K"),
	}}
	state := botState(2, &trump, bot, &game.Player{ID: "p1"}, &game.Player{ID: "p2"})
	state.Phase = game.PhasePlaying
	state.CurrentTrick = []game.TrickCard{
		{Card: game.NewCard(game.SuitClubs, "9"), PlayerID: "p1"},
	}

	got := game.DecideCard(state, bot, rand.New(rand.NewSource(1)))
	if got != "hearts-4" {
		t.Fatalf("played %s, want the ruff hearts-4", got)
	}
}

func TestNextBotNameSkipsTaken(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	first := game.NextBotName(nil, rng)
	second := game.NextBotName([]string{first}, rng)
	if first == second {
		t.Fatalf("bot names collide: %s", first)
	}
	if first != "Bot Alice" || second != "Bot Bob" {
		t.Fatalf("got %q, %q; want pool order", first, second)
	}
}
