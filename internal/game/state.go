package game

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "roundEnd"
	PhaseGameOver Phase = "gameOver"
)

const (
	MinPlayers = 3
	MaxPlayers = 7
)

// Player is owned exclusively by the room. The hand is private and only ever
// leaves the aggregate through the owner's ClientView. A player is removed
// only while the room is in the lobby (or via removeBot); afterwards a
// departed player stays seated, marked disconnected, so seat order and
// scoring remain stable.
type Player struct {
	ID        string
	Name      string
	Connected bool
	IsBot     bool
	Hand      []Card
	Bid       *int
	TricksWon int
}

type TrickCard struct {
	Card     Card   `json:"card"`
	PlayerID string `json:"playerId"`
}

type CompletedTrick struct {
	Cards    []TrickCard `json:"cards"`
	WinnerID string      `json:"winnerId"`
}

// RoundScore is a per-player snapshot taken once at round end, never mutated.
type RoundScore struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	IsBot      bool   `json:"isBot"`
	Bid        int    `json:"bid"`
	TricksWon  int    `json:"tricksWon"`
	RoundScore int    `json:"roundScore"`
	TotalScore int    `json:"totalScore"`
}

// GameState is the single mutable aggregate for a room. It is only ever
// touched while holding the room mutex.
type GameState struct {
	RoomID           string
	Players          []*Player
	Phase            Phase
	DealerIndex      int
	CurrentTurnIndex int
	RoundNumber      int
	TotalRounds      int
	CardsPerRound    int
	TrumpCard        *Card
	TrumpSuit        *Suit
	CurrentTrick     []TrickCard
	TrickWinner      string // transient reveal marker, "" outside the window
	TrickNumber      int
	LeadPlayerIndex  int
	Scores           map[string]int
	RoundScores      []RoundScore
	CompletedTricks  []CompletedTrick
	RoundSeq         []int
	HostID           string
}

func newGameState(roomID, hostID, hostName string) *GameState {
	return &GameState{
		RoomID: roomID,
		Players: []*Player{{
			ID:        hostID,
			Name:      hostName,
			Connected: true,
		}},
		Phase:  PhaseLobby,
		Scores: map[string]int{hostID: 0},
		HostID: hostID,
	}
}

func (s *GameState) playerByID(id string) (*Player, int) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// bidsPlaced collects placed bids in bidding order, left of dealer around to
// the dealer.
func (s *GameState) bidsPlaced() []int {
	n := len(s.Players)
	bids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		if b := s.Players[(s.DealerIndex+i)%n].Bid; b != nil {
			bids = append(bids, *b)
		}
	}
	return bids
}

func (s *GameState) leadSuit() *Suit {
	if len(s.CurrentTrick) == 0 {
		return nil
	}
	suit := s.CurrentTrick[0].Card.Suit
	return &suit
}

func (s *GameState) allHumansGone() bool {
	for _, p := range s.Players {
		if !p.IsBot && p.Connected {
			return false
		}
	}
	return true
}
