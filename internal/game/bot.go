package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// The bot reads the full, non-redacted state but only ever emits actions that
// pass the same rule checks a human's would. Tie-breaks run through the
// injected rng so tests can fix a seed.

var botNames = []string{
	"Bot Alice", "Bot Bob", "Bot Carol", "Bot Dave",
	"Bot Eve", "Bot Frank", "Bot Grace",
}

// NextBotName returns the first pool name not yet taken.
func NextBotName(existing []string, rng *rand.Rand) string {
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}
	for _, n := range botNames {
		if !taken[n] {
			return n
		}
	}
	return fmt.Sprintf("Bot %d", rng.Intn(1000))
}

// DecideBid estimates the bot's expected tricks card by card and returns the
// nearest legal bid. Trump cards contribute 0.25-0.95 scaled by rank,
// off-suit aces 0.8, off-suit kings 0.4 when guarded, and each void non-trump
// suit adds a small ruffing bonus while the hand holds trump.
func DecideBid(state *GameState, bot *Player) int {
	_, idx := state.playerByID(bot.ID)
	isDealer := idx == state.DealerIndex

	suitCounts := make(map[Suit]int)
	trumpCount := 0
	for _, c := range bot.Hand {
		suitCounts[c.Suit]++
		if state.TrumpSuit != nil && c.Suit == *state.TrumpSuit {
			trumpCount++
		}
	}

	estimate := 0.0
	for _, c := range bot.Hand {
		switch {
		case state.TrumpSuit != nil && c.Suit == *state.TrumpSuit:
			// 2 -> 0.25, A -> 0.95
			estimate += 0.25 + 0.7*float64(c.RankValue()-2)/12.0
		case c.Rank == "A":
			estimate += 0.8
		case c.Rank == "K" && suitCounts[c.Suit] >= 2:
			estimate += 0.4
		}
	}
	if trumpCount > 0 && state.TrumpSuit != nil {
		for _, s := range suits {
			if s != *state.TrumpSuit && suitCounts[s] == 0 {
				estimate += 0.3
			}
		}
	}

	bid := int(estimate + 0.5)
	if bid < 0 {
		bid = 0
	}
	if bid > state.CardsPerRound {
		bid = state.CardsPerRound
	}

	prior := state.bidsPlaced()
	if IsLegalBid(bid, state.CardsPerRound, prior, isDealer) {
		return bid
	}
	// Nearest legal bid, probing upward first at each distance.
	for delta := 1; delta <= state.CardsPerRound; delta++ {
		if bid+delta <= state.CardsPerRound && IsLegalBid(bid+delta, state.CardsPerRound, prior, isDealer) {
			return bid + delta
		}
		if bid-delta >= 0 && IsLegalBid(bid-delta, state.CardsPerRound, prior, isDealer) {
			return bid - delta
		}
	}
	return 0
}

// DecideCard picks a legal card for the bot's turn and returns its ID.
func DecideCard(state *GameState, bot *Player, rng *rand.Rand) string {
	leadSuit := state.leadSuit()
	legal := LegalPlays(bot.Hand, leadSuit)
	if len(legal) == 0 {
		// Defensive; the state machine never asks with an empty hand.
		return ""
	}
	if len(legal) == 1 {
		return legal[0].ID
	}

	needTricks := bot.Bid != nil && bot.TricksWon < *bot.Bid

	if leadSuit == nil {
		return decideLead(state, bot, legal, needTricks, rng)
	}
	follow := cardsOfSuit(legal, *leadSuit)
	if len(follow) > 0 {
		return decideFollow(state, follow, needTricks)
	}
	return decideVoid(state, bot, legal, needTricks, rng)
}

func decideLead(state *GameState, bot *Player, legal []Card, needTricks bool, rng *rand.Rand) string {
	byRankDesc(legal)
	if needTricks {
		for _, c := range legal {
			if isHighestRemaining(state, bot.Hand, c) {
				return c.ID
			}
		}
		return legal[0].ID
	}
	pool := nonTrump(legal, state.TrumpSuit)
	if len(pool) == 0 {
		pool = legal
	}
	suit := longestSuit(bot.Hand, pool, rng)
	dump := cardsOfSuit(pool, suit)
	byRankAsc(dump)
	return dump[0].ID
}

func decideFollow(state *GameState, follow []Card, needTricks bool) string {
	byRankAsc(follow)
	winner := trickLeader(state.CurrentTrick, state.TrumpSuit)
	winnerTrumped := state.TrumpSuit != nil &&
		winner.Card.Suit == *state.TrumpSuit &&
		state.CurrentTrick[0].Card.Suit != *state.TrumpSuit

	if !needTricks || winnerTrumped {
		// Cannot or should not win; shed the cheapest.
		return follow[0].ID
	}

	for _, c := range follow {
		if c.RankValue() > winner.Card.RankValue() {
			// Cheapest beater. If seats remain behind us and this card can
			// still be overtaken in suit, spend the strongest instead.
			seatsLeft := len(state.Players) - len(state.CurrentTrick) - 1
			if seatsLeft > 0 && !isHighestRemainingOutside(state, follow, c) {
				return follow[len(follow)-1].ID
			}
			return c.ID
		}
	}
	return follow[0].ID
}

func decideVoid(state *GameState, bot *Player, legal []Card, needTricks bool, rng *rand.Rand) string {
	if needTricks {
		if state.TrumpSuit != nil {
			trumps := cardsOfSuit(legal, *state.TrumpSuit)
			byRankAsc(trumps)
			if len(trumps) > 0 {
				highestPlayed := 0
				for _, tc := range state.CurrentTrick {
					if tc.Card.Suit == *state.TrumpSuit && tc.Card.RankValue() > highestPlayed {
						highestPlayed = tc.Card.RankValue()
					}
				}
				for _, c := range trumps {
					if c.RankValue() > highestPlayed {
						return c.ID
					}
				}
			}
		}
		low := append([]Card(nil), legal...)
		byRankAsc(low)
		return low[0].ID
	}

	pool := nonTrump(legal, state.TrumpSuit)
	if len(pool) == 0 {
		pool = legal
	}
	suit := longestSuit(bot.Hand, pool, rng)
	dump := cardsOfSuit(pool, suit)
	byRankDesc(dump)
	return dump[0].ID
}

// isHighestRemaining reports whether no unseen card of c's suit outranks c.
// Seen cards are the round's completed tricks, the trick in progress, the
// revealed trump card, and the bot's own hand.
func isHighestRemaining(state *GameState, hand []Card, c Card) bool {
	seen := seenCards(state)
	for _, h := range hand {
		seen[h.ID] = true
	}
	return noUnseenHigher(seen, c)
}

// isHighestRemainingOutside is the same check scoped to the cards the bot can
// still be beaten with, treating only the given holding as its own.
func isHighestRemainingOutside(state *GameState, holding []Card, c Card) bool {
	seen := seenCards(state)
	for _, h := range holding {
		seen[h.ID] = true
	}
	return noUnseenHigher(seen, c)
}

func seenCards(state *GameState) map[string]bool {
	seen := make(map[string]bool)
	for _, ct := range state.CompletedTricks {
		for _, tc := range ct.Cards {
			seen[tc.Card.ID] = true
		}
	}
	for _, tc := range state.CurrentTrick {
		seen[tc.Card.ID] = true
	}
	if state.TrumpCard != nil {
		seen[state.TrumpCard.ID] = true
	}
	return seen
}

func noUnseenHigher(seen map[string]bool, c Card) bool {
	for _, rank := range ranks {
		if rankOrder[rank] <= c.RankValue() {
			continue
		}
		if !seen[NewCard(c.Suit, rank).ID] {
			return false
		}
	}
	return true
}

// longestSuit picks the suit of pool with the most cards in hand, breaking
// exact ties randomly.
func longestSuit(hand, pool []Card, rng *rand.Rand) Suit {
	counts := make(map[Suit]int)
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := -1
	var candidates []Suit
	for _, s := range suits {
		if len(cardsOfSuit(pool, s)) == 0 {
			continue
		}
		switch {
		case counts[s] > best:
			best = counts[s]
			candidates = []Suit{s}
		case counts[s] == best:
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return candidates[rng.Intn(len(candidates))]
}

func cardsOfSuit(cards []Card, suit Suit) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

func nonTrump(cards []Card, trumpSuit *Suit) []Card {
	if trumpSuit == nil {
		return cards
	}
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Suit != *trumpSuit {
			out = append(out, c)
		}
	}
	return out
}

func byRankAsc(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].RankValue() < cards[j].RankValue() })
}

func byRankDesc(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].RankValue() > cards[j].RankValue() })
}
