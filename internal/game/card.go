package game

import (
	"fmt"
	"math/rand"
	"sort"
)

type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

var suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// rankOrder maps a rank to its strength, 2 low through A high.
var rankOrder = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8,
	"9": 9, "10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// Card is an immutable value; identity is (suit, rank).
type Card struct {
	Suit Suit   `json:"suit"`
	Rank string `json:"rank"`
	ID   string `json:"id"` // e.g. "hearts-A"
}

func NewCard(suit Suit, rank string) Card {
	return Card{Suit: suit, Rank: rank, ID: fmt.Sprintf("%s-%s", suit, rank)}
}

// RankValue returns the card's strength, 2 low through 14 (ace) high.
func (c Card) RankValue() int {
	return rankOrder[c.Rank]
}

// NewDeck returns the 52-card set in canonical order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range suits {
		for _, rank := range ranks {
			deck = append(deck, NewCard(suit, rank))
		}
	}
	return deck
}

// Shuffle permutes deck in place (Fisher-Yates).
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// Deal distributes cardsEach cards to seatCount hands, one card per seat per
// pass, and returns the hands plus the undealt stub.
func Deal(deck []Card, seatCount, cardsEach int) (hands [][]Card, stub []Card) {
	hands = make([][]Card, seatCount)
	for i := range hands {
		hands[i] = make([]Card, 0, cardsEach)
	}
	idx := 0
	for c := 0; c < cardsEach; c++ {
		for p := 0; p < seatCount; p++ {
			hands[p] = append(hands[p], deck[idx])
			idx++
		}
	}
	return hands, deck[idx:]
}

// DetermineTrump returns the first stub card; ok is false when the stub is
// empty (every card dealt), in which case the round is played without trump.
func DetermineTrump(stub []Card) (Card, bool) {
	if len(stub) == 0 {
		return Card{}, false
	}
	return stub[0], true
}

// RoundSequence returns cards per round, seatCount counting down to 1.
func RoundSequence(seatCount int) []int {
	seq := make([]int, 0, seatCount)
	for n := seatCount; n >= 1; n-- {
		seq = append(seq, n)
	}
	return seq
}

var displaySuitOrder = map[Suit]int{
	SuitSpades:   0,
	SuitHearts:   1,
	SuitDiamonds: 2,
	SuitClubs:    3,
}

// SortHand orders a hand for display, grouping suits and ascending rank.
func SortHand(hand []Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		if displaySuitOrder[hand[i].Suit] != displaySuitOrder[hand[j].Suit] {
			return displaySuitOrder[hand[i].Suit] < displaySuitOrder[hand[j].Suit]
		}
		return hand[i].RankValue() < hand[j].RankValue()
	})
}
