package game

// Stateless rule predicates shared by the room state machine and the bot.

// IsLegalBid reports whether bid is allowed for a hand of handSize given the
// bids already placed. The dealer bids last and may never bring the total to
// exactly handSize (the hook rule), so at least one player misses.
func IsLegalBid(bid, handSize int, priorBids []int, isDealer bool) bool {
	if bid < 0 || bid > handSize {
		return false
	}
	if !isDealer {
		return true
	}
	return sumInts(priorBids)+bid != handSize
}

// BlockedBidForDealer returns the one value the hook rule denies the dealer,
// or ok=false when that value falls outside [0, handSize] and nothing is
// actually blocked.
func BlockedBidForDealer(handSize int, priorBids []int) (int, bool) {
	blocked := handSize - sumInts(priorBids)
	if blocked < 0 || blocked > handSize {
		return 0, false
	}
	return blocked, true
}

// IsLegalPlay reports whether card may be played from hand. leadSuit is nil
// when leading the trick.
func IsLegalPlay(card Card, hand []Card, leadSuit *Suit) bool {
	if leadSuit == nil {
		return true
	}
	if card.Suit == *leadSuit {
		return true
	}
	for _, c := range hand {
		if c.Suit == *leadSuit {
			return false
		}
	}
	return true
}

// LegalPlays filters hand down to the cards IsLegalPlay accepts.
func LegalPlays(hand []Card, leadSuit *Suit) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if IsLegalPlay(c, hand, leadSuit) {
			out = append(out, c)
		}
	}
	return out
}

// TrickWinner determines the winning player of a completed trick. The first
// card establishes the lead suit; any trump beats any non-trump, and within
// the winning suit class the higher rank wins.
func TrickWinner(trick []TrickCard, trumpSuit *Suit) string {
	return trickLeader(trick, trumpSuit).PlayerID
}

// trickLeader returns the card currently holding a (possibly partial) trick.
// Shared with the bot, which inspects mid-trick standings.
func trickLeader(trick []TrickCard, trumpSuit *Suit) TrickCard {
	leadSuit := trick[0].Card.Suit
	best := trick[0]
	bestIsTrump := trumpSuit != nil && best.Card.Suit == *trumpSuit

	for _, tc := range trick[1:] {
		isTrump := trumpSuit != nil && tc.Card.Suit == *trumpSuit
		switch {
		case bestIsTrump:
			if isTrump && tc.Card.RankValue() > best.Card.RankValue() {
				best = tc
			}
		case isTrump:
			best = tc
			bestIsTrump = true
		case tc.Card.Suit == leadSuit && tc.Card.RankValue() > best.Card.RankValue():
			best = tc
		}
	}
	return best
}

// ScoreRound computes each player's score for a finished round: 10+bid on an
// exact bid, zero otherwise. No partial credit.
func ScoreRound(players []*Player) map[string]int {
	scores := make(map[string]int, len(players))
	for _, p := range players {
		if p.Bid != nil && p.TricksWon == *p.Bid {
			scores[p.ID] = 10 + *p.Bid
		} else {
			scores[p.ID] = 0
		}
	}
	return scores
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
