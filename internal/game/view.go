package game

// ClientPlayer is a seat as any player may see it: hand reduced to a count.
type ClientPlayer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Connected     bool   `json:"connected"`
	IsBot         bool   `json:"isBot"`
	CardCount     int    `json:"cardCount"`
	Bid           *int   `json:"bid"`
	TricksWon     int    `json:"tricksWon"`
	IsDealer      bool   `json:"isDealer"`
	IsCurrentTurn bool   `json:"isCurrentTurn"`
}

// ClientView is the per-player projection of GameState sent over the wire.
// Only the viewer's own hand appears in full. Views are rebuilt from scratch
// on every broadcast, never cached.
type ClientView struct {
	RoomID           string           `json:"roomId"`
	PlayerID         string           `json:"playerId"`
	Players          []ClientPlayer   `json:"players"`
	Phase            Phase            `json:"phase"`
	Hand             []Card           `json:"hand"`
	DealerIndex      int              `json:"dealerIndex"`
	CurrentTurnIndex int              `json:"currentTurnIndex"`
	RoundNumber      int              `json:"roundNumber"`
	TotalRounds      int              `json:"totalRounds"`
	CardsPerRound    int              `json:"cardsPerRound"`
	TrumpCard        *Card            `json:"trumpCard"`
	TrumpSuit        *Suit            `json:"trumpSuit"`
	CurrentTrick     []TrickCard      `json:"currentTrick"`
	TrickWinner      string           `json:"trickWinner,omitempty"`
	TrickNumber      int              `json:"trickNumber"`
	LeadPlayerIndex  int              `json:"leadPlayerIndex"`
	Scores           map[string]int   `json:"scores"`
	RoundScores      []RoundScore     `json:"roundScores"`
	CompletedTricks  []CompletedTrick `json:"completedTricks"`
	HostID           string           `json:"hostId"`
	MyIndex          int              `json:"myIndex"`
}

func buildClientView(s *GameState, playerID string) ClientView {
	me, myIndex := s.playerByID(playerID)

	players := make([]ClientPlayer, len(s.Players))
	for i, p := range s.Players {
		players[i] = ClientPlayer{
			ID:            p.ID,
			Name:          p.Name,
			Connected:     p.Connected,
			IsBot:         p.IsBot,
			CardCount:     len(p.Hand),
			Bid:           p.Bid,
			TricksWon:     p.TricksWon,
			IsDealer:      i == s.DealerIndex,
			IsCurrentTurn: i == s.CurrentTurnIndex,
		}
	}

	hand := []Card{}
	if me != nil {
		hand = append(hand, me.Hand...)
	}

	scores := make(map[string]int, len(s.Scores))
	for id, v := range s.Scores {
		scores[id] = v
	}

	return ClientView{
		RoomID:           s.RoomID,
		PlayerID:         playerID,
		Players:          players,
		Phase:            s.Phase,
		Hand:             hand,
		DealerIndex:      s.DealerIndex,
		CurrentTurnIndex: s.CurrentTurnIndex,
		RoundNumber:      s.RoundNumber,
		TotalRounds:      s.TotalRounds,
		CardsPerRound:    s.CardsPerRound,
		TrumpCard:        s.TrumpCard,
		TrumpSuit:        s.TrumpSuit,
		CurrentTrick:     append([]TrickCard(nil), s.CurrentTrick...),
		TrickWinner:      s.TrickWinner,
		TrickNumber:      s.TrickNumber,
		LeadPlayerIndex:  s.LeadPlayerIndex,
		Scores:           scores,
		RoundScores:      append([]RoundScore(nil), s.RoundScores...),
		CompletedTricks:  append([]CompletedTrick(nil), s.CompletedTricks...),
		HostID:           s.HostID,
		MyIndex:          myIndex,
	}
}
