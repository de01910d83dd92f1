package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	appErr "ohhell-service/pkg/errors"
	"ohhell-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultGraceTimeout = 60 * time.Second
	defaultExpireAfter  = 10 * time.Minute
	defaultRevealDelay  = 2500 * time.Millisecond
	defaultBotDelayMin  = 1 * time.Second
	defaultBotDelayMax  = 2 * time.Second

	maxChatLength  = 200
	chatBufferSize = 100
	maxNameLength  = 20
)

// Options carries the per-room knobs. Zero values fall back to production
// defaults; tests shrink the delays.
type Options struct {
	GraceTimeout time.Duration
	ExpireAfter  time.Duration
	RevealDelay  time.Duration
	BotDelayMin  time.Duration
	BotDelayMax  time.Duration

	Rng      *rand.Rand
	Archiver Archiver
	OnRemove func(code string)
}

func (o Options) withDefaults() Options {
	if o.GraceTimeout <= 0 {
		o.GraceTimeout = defaultGraceTimeout
	}
	if o.ExpireAfter <= 0 {
		o.ExpireAfter = defaultExpireAfter
	}
	if o.RevealDelay <= 0 {
		o.RevealDelay = defaultRevealDelay
	}
	if o.BotDelayMin <= 0 {
		o.BotDelayMin = defaultBotDelayMin
	}
	if o.BotDelayMax < o.BotDelayMin {
		o.BotDelayMax = defaultBotDelayMax
	}
	if o.Rng == nil {
		o.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Standing is one line of a finished game's final table.
type Standing struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	IsBot      bool   `json:"isBot"`
	Score      int    `json:"score"`
}

type Result struct {
	RoomCode   string
	Rounds     int
	Standings  []Standing
	FinishedAt time.Time
}

type Report struct {
	RoomCode   string
	MessageID  string
	ReporterID string
	AuthorID   string
	Text       string
	Reason     string
}

// Archiver receives artifacts worth keeping after a room dies. Room state
// itself is never persisted.
type Archiver interface {
	SaveGameResult(result Result) error
	SaveChatReport(report Report) error
}

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type ChatMessage struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// pendingTrick holds a completed trick's outcome through the reveal window.
type pendingTrick struct {
	winnerID        string
	nextTrickNumber int
	nextLeadIndex   int
	roundOver       bool
}

// Room is the authoritative actor for one game. Every mutation — inbound
// player action, bot move, fired timer — runs under mu, so no two ever
// interleave and the state invariants hold between snapshots. Timers keep
// only player ids, never pointers into the aggregate, and re-validate the
// state they find before acting.
type Room struct {
	code string
	opts Options

	mu          sync.Mutex
	state       *GameState
	pending     *pendingTrick
	chat        []ChatMessage
	subscribers map[string]chan OutgoingMessage
	graceTimers map[string]*time.Timer
	expiryTimer *time.Timer
	seq         int64
	closed      bool
}

// NewRoom creates a room in the lobby phase with its host seated and returns
// the generated host player id alongside it.
func NewRoom(code, hostName string, opts Options) (*Room, string) {
	hostID := newPlayerID()
	r := &Room{
		code:        code,
		opts:        opts.withDefaults(),
		state:       newGameState(code, hostID, hostName),
		subscribers: make(map[string]chan OutgoingMessage),
		graceTimers: make(map[string]*time.Timer),
	}
	return r, hostID
}

func (r *Room) Code() string { return r.code }

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Phase
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Players)
}

func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.state.Players {
		if p.Connected && !p.IsBot {
			n++
		}
	}
	return n
}

// View returns the redacted projection for one player, rebuilt fresh.
func (r *Room) View(playerID string) ClientView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return buildClientView(r.state, playerID)
}

// SanitizeName strips markup-significant characters and caps the length.
func SanitizeName(name string) string {
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	name = strings.TrimSpace(name)
	return truncateRunes(name, maxNameLength)
}

// truncateRunes caps s at limit runes without splitting a multi-byte rune.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// Join seats a new human player. Legal only in the lobby with a free seat.
func (r *Room) Join(playerName string) (string, error) {
	name := SanitizeName(playerName)
	if name == "" {
		return "", appErr.ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", appErr.ErrRoomClosed
	}
	if r.state.Phase != PhaseLobby {
		return "", appErr.ErrGameInProgress
	}
	if len(r.state.Players) >= MaxPlayers {
		return "", appErr.ErrRoomFull
	}

	id := newPlayerID()
	r.state.Players = append(r.state.Players, &Player{ID: id, Name: name, Connected: true})
	r.state.Scores[id] = 0
	r.broadcastStateLocked()
	return id, nil
}

// Rejoin checks that a stable player id is known to this room.
func (r *Room) Rejoin(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return appErr.ErrRoomClosed
	}
	if p, _ := r.state.playerByID(playerID); p == nil || p.IsBot {
		return appErr.ErrPlayerNotFound
	}
	return nil
}

// Subscribe binds a transport connection to a player and returns its outbound
// channel. Any previous channel for the player is closed, which tears down
// the stale connection; pending grace and expiry timers are cancelled. The
// new subscriber immediately receives the chat history and a fresh state.
func (r *Room) Subscribe(playerID string) (<-chan OutgoingMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, appErr.ErrRoomClosed
	}
	p, _ := r.state.playerByID(playerID)
	if p == nil {
		return nil, appErr.ErrPlayerNotFound
	}

	if old, ok := r.subscribers[playerID]; ok {
		close(old)
	}
	ch := make(chan OutgoingMessage, 16)
	r.subscribers[playerID] = ch
	p.Connected = true

	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
		delete(r.graceTimers, playerID)
	}
	if r.expiryTimer != nil {
		r.expiryTimer.Stop()
		r.expiryTimer = nil
	}

	if len(r.chat) > 0 {
		r.pushLocked(ch, "chat-history", append([]ChatMessage(nil), r.chat...))
	}
	r.broadcastStateLocked()
	return ch, nil
}

// Unsubscribe runs the disconnect path for a dead connection. The channel
// identifies the connection: if the player has already rebound to a newer
// one, the call is a no-op.
func (r *Room) Unsubscribe(playerID string, ch <-chan OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	cur, ok := r.subscribers[playerID]
	if !ok || cur != ch {
		return
	}
	delete(r.subscribers, playerID)
	close(cur)
	r.disconnectLocked(playerID)
}

// HandleAction validates and applies one in-room action from a bound player.
func (r *Room) HandleAction(playerID, action string, data json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return appErr.ErrRoomClosed
	}
	if p, _ := r.state.playerByID(playerID); p == nil {
		return appErr.ErrPlayerNotFound
	}

	switch action {
	case "start-game":
		return r.startGameLocked(playerID)
	case "place-bid":
		var payload struct {
			Bid int `json:"bid"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrIllegalBid
		}
		return r.placeBidLocked(playerID, payload.Bid)
	case "play-card":
		var payload struct {
			CardID string `json:"cardId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrCardNotHeld
		}
		return r.playCardLocked(playerID, payload.CardID)
	case "continue-round":
		return r.continueRoundLocked(playerID)
	case "add-bot":
		return r.addBotLocked(playerID)
	case "remove-bot":
		var payload struct {
			BotID string `json:"botId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrNotABot
		}
		return r.removeBotLocked(playerID, payload.BotID)
	case "chat":
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrEmptyChat
		}
		return r.chatLocked(playerID, payload.Text)
	case "report":
		var payload struct {
			MessageID string `json:"messageId"`
			Reason    string `json:"reason"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrMessageNotFound
		}
		return r.reportLocked(playerID, payload.MessageID, payload.Reason)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// ── lobby operations ─────────────────────────────────────────────────

func (r *Room) startGameLocked(playerID string) error {
	if playerID != r.state.HostID {
		return appErr.ErrNotHost
	}
	if r.state.Phase != PhaseLobby {
		return appErr.ErrWrongPhase
	}
	if len(r.state.Players) < MinPlayers {
		return appErr.ErrNotEnoughPlayers
	}

	r.state.RoundSeq = RoundSequence(len(r.state.Players))
	r.state.TotalRounds = len(r.state.RoundSeq)
	r.state.RoundNumber = 0
	r.state.DealerIndex = 0
	r.startNextRoundLocked()
	r.driveTurnLocked()
	r.broadcastStateLocked()
	return nil
}

func (r *Room) addBotLocked(playerID string) error {
	if playerID != r.state.HostID {
		return appErr.ErrNotHost
	}
	if r.state.Phase != PhaseLobby {
		return appErr.ErrWrongPhase
	}
	if len(r.state.Players) >= MaxPlayers {
		return appErr.ErrRoomFull
	}

	names := make([]string, len(r.state.Players))
	for i, p := range r.state.Players {
		names[i] = p.Name
	}
	bot := &Player{
		ID:        "bot-" + uuid.NewString(),
		Name:      NextBotName(names, r.opts.Rng),
		Connected: true,
		IsBot:     true,
	}
	r.state.Players = append(r.state.Players, bot)
	r.state.Scores[bot.ID] = 0
	r.broadcastStateLocked()
	return nil
}

func (r *Room) removeBotLocked(playerID, botID string) error {
	if playerID != r.state.HostID {
		return appErr.ErrNotHost
	}
	if r.state.Phase != PhaseLobby {
		return appErr.ErrWrongPhase
	}
	p, idx := r.state.playerByID(botID)
	if p == nil || !p.IsBot {
		return appErr.ErrNotABot
	}
	r.state.Players = append(r.state.Players[:idx], r.state.Players[idx+1:]...)
	delete(r.state.Scores, botID)
	r.broadcastStateLocked()
	return nil
}

// ── round lifecycle ──────────────────────────────────────────────────

func (r *Room) startNextRoundLocked() {
	s := r.state
	s.RoundNumber++
	s.CardsPerRound = s.RoundSeq[s.RoundNumber-1]
	s.TrickNumber = 0
	s.CurrentTrick = nil
	s.TrickWinner = ""
	s.CompletedTricks = nil
	s.RoundScores = nil
	r.pending = nil

	for _, p := range s.Players {
		p.Bid = nil
		p.TricksWon = 0
	}

	deck := NewDeck()
	Shuffle(deck, r.opts.Rng)
	hands, stub := Deal(deck, len(s.Players), s.CardsPerRound)
	for i, p := range s.Players {
		SortHand(hands[i])
		p.Hand = hands[i]
	}

	if trump, ok := DetermineTrump(stub); ok {
		s.TrumpCard = &trump
		suit := trump.Suit
		s.TrumpSuit = &suit
	} else {
		s.TrumpCard = nil
		s.TrumpSuit = nil
	}

	s.CurrentTurnIndex = (s.DealerIndex + 1) % len(s.Players)
	s.Phase = PhaseBidding
}

func (r *Room) continueRoundLocked(playerID string) error {
	if r.state.Phase != PhaseRoundEnd {
		return appErr.ErrWrongPhase
	}
	if playerID != r.state.HostID {
		return appErr.ErrNotHost
	}
	r.state.DealerIndex = (r.state.DealerIndex + 1) % len(r.state.Players)
	r.startNextRoundLocked()
	r.driveTurnLocked()
	r.broadcastStateLocked()
	return nil
}

func (r *Room) endRoundLocked() {
	s := r.state
	roundScores := ScoreRound(s.Players)

	entries := make([]RoundScore, 0, len(s.Players))
	for _, p := range s.Players {
		rs := roundScores[p.ID]
		s.Scores[p.ID] += rs
		entries = append(entries, RoundScore{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			IsBot:      p.IsBot,
			Bid:        *p.Bid,
			TricksWon:  p.TricksWon,
			RoundScore: rs,
			TotalScore: s.Scores[p.ID],
		})
	}
	s.RoundScores = entries

	if s.RoundNumber >= s.TotalRounds {
		s.Phase = PhaseGameOver
		r.archiveResultLocked()
	} else {
		s.Phase = PhaseRoundEnd
	}
}

// ── bidding ──────────────────────────────────────────────────────────

func (r *Room) placeBidLocked(playerID string, bid int) error {
	if r.state.Phase != PhaseBidding {
		return appErr.ErrWrongPhase
	}
	_, idx := r.state.playerByID(playerID)
	if idx != r.state.CurrentTurnIndex {
		return appErr.ErrNotYourTurn
	}
	if err := r.applyBidLocked(idx, bid); err != nil {
		return err
	}
	r.driveTurnLocked()
	r.broadcastStateLocked()
	return nil
}

func (r *Room) applyBidLocked(idx, bid int) error {
	s := r.state
	p := s.Players[idx]
	if p.Bid != nil {
		return appErr.ErrAlreadyBid
	}
	if !IsLegalBid(bid, s.CardsPerRound, s.bidsPlaced(), idx == s.DealerIndex) {
		return appErr.ErrIllegalBid
	}

	b := bid
	p.Bid = &b

	for _, other := range s.Players {
		if other.Bid == nil {
			s.CurrentTurnIndex = (s.CurrentTurnIndex + 1) % len(s.Players)
			return nil
		}
	}
	// Everyone has bid; play starts left of the dealer.
	s.Phase = PhasePlaying
	s.TrickNumber = 1
	s.LeadPlayerIndex = (s.DealerIndex + 1) % len(s.Players)
	s.CurrentTurnIndex = s.LeadPlayerIndex
	s.CurrentTrick = nil
	return nil
}

// ── playing ──────────────────────────────────────────────────────────

func (r *Room) playCardLocked(playerID, cardID string) error {
	if r.state.Phase != PhasePlaying {
		return appErr.ErrWrongPhase
	}
	if r.pending != nil {
		// No seat owns the turn during the reveal window.
		return appErr.ErrTrickResolving
	}
	_, idx := r.state.playerByID(playerID)
	if idx != r.state.CurrentTurnIndex {
		return appErr.ErrNotYourTurn
	}
	if err := r.applyPlayLocked(idx, cardID); err != nil {
		return err
	}
	r.driveTurnLocked()
	r.broadcastStateLocked()
	return nil
}

func (r *Room) applyPlayLocked(idx int, cardID string) error {
	s := r.state
	p := s.Players[idx]

	cardIdx := -1
	for i, c := range p.Hand {
		if c.ID == cardID {
			cardIdx = i
			break
		}
	}
	if cardIdx == -1 {
		return appErr.ErrCardNotHeld
	}
	card := p.Hand[cardIdx]
	if !IsLegalPlay(card, p.Hand, s.leadSuit()) {
		return appErr.ErrIllegalPlay
	}

	p.Hand = append(p.Hand[:cardIdx], p.Hand[cardIdx+1:]...)
	s.CurrentTrick = append(s.CurrentTrick, TrickCard{Card: card, PlayerID: p.ID})

	if len(s.CurrentTrick) < len(s.Players) {
		s.CurrentTurnIndex = (s.CurrentTurnIndex + 1) % len(s.Players)
		return nil
	}

	// Trick complete: record the winner now, sweep after the reveal delay so
	// clients can render the full trick.
	winnerID := TrickWinner(s.CurrentTrick, s.TrumpSuit)
	winner, winnerIdx := s.playerByID(winnerID)
	winner.TricksWon++
	s.TrickWinner = winnerID

	r.pending = &pendingTrick{
		winnerID:        winnerID,
		nextTrickNumber: s.TrickNumber + 1,
		nextLeadIndex:   winnerIdx,
		roundOver:       s.TrickNumber >= s.CardsPerRound,
	}
	time.AfterFunc(r.opts.RevealDelay, r.onRevealElapsed)
	return nil
}

// onRevealElapsed archives the completed trick and resumes play. Runs as a
// deferred action re-entering the room lock; always fires against current
// state.
func (r *Room) onRevealElapsed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.pending == nil {
		return
	}
	s := r.state
	p := r.pending
	r.pending = nil

	s.CompletedTricks = append(s.CompletedTricks, CompletedTrick{
		Cards:    append([]TrickCard(nil), s.CurrentTrick...),
		WinnerID: p.winnerID,
	})
	s.CurrentTrick = nil
	s.TrickWinner = ""

	if p.roundOver {
		r.endRoundLocked()
	} else {
		s.TrickNumber = p.nextTrickNumber
		s.LeadPlayerIndex = p.nextLeadIndex
		s.CurrentTurnIndex = p.nextLeadIndex
	}
	r.driveTurnLocked()
	r.broadcastStateLocked()
}

// ── turn scheduling ──────────────────────────────────────────────────

// driveTurnLocked looks at whose turn it is and keeps the game moving: bots
// get a deferred thinking pause, and a disconnected human whose grace period
// has already lapsed is forced immediately. Connected humans (and humans
// still inside their grace window) are simply waited on.
func (r *Room) driveTurnLocked() {
	s := r.state
	if s.Phase != PhaseBidding && s.Phase != PhasePlaying {
		return
	}
	if r.pending != nil {
		return
	}
	cur := s.Players[s.CurrentTurnIndex]
	if cur.IsBot {
		r.scheduleBotTurnLocked(cur.ID)
		return
	}
	if _, waiting := r.graceTimers[cur.ID]; !cur.Connected && !waiting {
		r.forceMoveLocked(s.CurrentTurnIndex)
		r.driveTurnLocked()
	}
}

func (r *Room) scheduleBotTurnLocked(botID string) {
	spread := r.opts.BotDelayMax - r.opts.BotDelayMin
	delay := r.opts.BotDelayMin
	if spread > 0 {
		delay += time.Duration(r.opts.Rng.Int63n(int64(spread)))
	}
	time.AfterFunc(delay, func() { r.onBotTurn(botID) })
}

func (r *Room) onBotTurn(botID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.pending != nil {
		return
	}
	s := r.state
	if s.Phase != PhaseBidding && s.Phase != PhasePlaying {
		return
	}
	cur := s.Players[s.CurrentTurnIndex]
	if cur.ID != botID || !cur.IsBot {
		return
	}

	switch s.Phase {
	case PhaseBidding:
		if err := r.applyBidLocked(s.CurrentTurnIndex, DecideBid(s, cur)); err != nil {
			logger.Log.Error("bot bid rejected", zap.String("room", r.code), zap.String("bot", botID), zap.Error(err))
			r.forceMoveLocked(s.CurrentTurnIndex)
		}
	case PhasePlaying:
		if err := r.applyPlayLocked(s.CurrentTurnIndex, DecideCard(s, cur, r.opts.Rng)); err != nil {
			logger.Log.Error("bot play rejected", zap.String("room", r.code), zap.String("bot", botID), zap.Error(err))
			r.forceMoveLocked(s.CurrentTurnIndex)
		}
	}
	r.driveTurnLocked()
	r.broadcastStateLocked()
}

// forceMoveLocked synthesizes the minimal legal action for the seat at idx:
// a bid of 0 (1 when the hook rule blocks 0) or the lowest-ranked legal card.
func (r *Room) forceMoveLocked(idx int) {
	s := r.state
	switch s.Phase {
	case PhaseBidding:
		bid := 0
		if !IsLegalBid(bid, s.CardsPerRound, s.bidsPlaced(), idx == s.DealerIndex) {
			bid = 1
		}
		if err := r.applyBidLocked(idx, bid); err != nil {
			logger.Log.Error("forced bid rejected", zap.String("room", r.code), zap.Error(err))
		}
	case PhasePlaying:
		legal := LegalPlays(s.Players[idx].Hand, s.leadSuit())
		if len(legal) == 0 {
			return
		}
		byRankAsc(legal)
		if err := r.applyPlayLocked(idx, legal[0].ID); err != nil {
			logger.Log.Error("forced play rejected", zap.String("room", r.code), zap.Error(err))
		}
	}
}

// ── connection lifecycle ─────────────────────────────────────────────

func (r *Room) disconnectLocked(playerID string) {
	s := r.state
	p, idx := s.playerByID(playerID)
	if p == nil || p.IsBot {
		return
	}
	p.Connected = false

	if s.Phase == PhaseLobby {
		// Lobby departures leave no trace.
		s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
		delete(s.Scores, playerID)
		if playerID == s.HostID {
			r.migrateHostLocked()
		}
		if s.allHumansGone() {
			r.closeLocked()
			return
		}
		r.broadcastStateLocked()
		return
	}

	if playerID == s.HostID {
		r.migrateHostLocked()
	}

	if s.Phase == PhaseGameOver {
		if s.allHumansGone() {
			r.closeLocked()
			return
		}
		r.broadcastStateLocked()
		return
	}

	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
	}
	r.graceTimers[playerID] = time.AfterFunc(r.opts.GraceTimeout, func() { r.onGraceExpired(playerID) })

	if s.allHumansGone() {
		if r.expiryTimer != nil {
			r.expiryTimer.Stop()
		}
		r.expiryTimer = time.AfterFunc(r.opts.ExpireAfter, r.onRoomExpired)
	}

	r.broadcastStateLocked()
}

// onGraceExpired forces the absent player's move if the game is still stuck
// on them. The forced move is an ordinary legal action, broadcast like any
// other state change.
func (r *Room) onGraceExpired(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.graceTimers, playerID)
	if r.closed || r.pending != nil {
		return
	}
	s := r.state
	if s.Phase != PhaseBidding && s.Phase != PhasePlaying {
		return
	}
	p, idx := s.playerByID(playerID)
	if p == nil || p.Connected || idx != s.CurrentTurnIndex {
		return
	}
	r.forceMoveLocked(idx)
	r.driveTurnLocked()
	r.broadcastStateLocked()
}

func (r *Room) onRoomExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if !r.state.allHumansGone() {
		return
	}
	logger.Log.Info("room expired", zap.String("room", r.code))
	r.closeLocked()
}

func (r *Room) migrateHostLocked() {
	for _, p := range r.state.Players {
		if p.ID != r.state.HostID && p.Connected && !p.IsBot {
			r.state.HostID = p.ID
			return
		}
	}
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true
	for id, t := range r.graceTimers {
		t.Stop()
		delete(r.graceTimers, id)
	}
	if r.expiryTimer != nil {
		r.expiryTimer.Stop()
		r.expiryTimer = nil
	}
	for id, ch := range r.subscribers {
		close(ch)
		delete(r.subscribers, id)
	}
	if r.opts.OnRemove != nil {
		r.opts.OnRemove(r.code)
	}
}

// ── chat ─────────────────────────────────────────────────────────────

func (r *Room) chatLocked(playerID, text string) error {
	p, _ := r.state.playerByID(playerID)
	text = strings.TrimSpace(text)
	if text == "" {
		return appErr.ErrEmptyChat
	}
	text = truncateRunes(text, maxChatLength)

	msg := ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}
	r.chat = append(r.chat, msg)
	if len(r.chat) > chatBufferSize {
		r.chat = r.chat[1:]
	}

	for _, ch := range r.subscribers {
		r.pushLocked(ch, "chat-message", msg)
	}
	return nil
}

func (r *Room) reportLocked(playerID, messageID, reason string) error {
	if r.opts.Archiver == nil {
		return appErr.ErrReportsDisabled
	}
	for _, msg := range r.chat {
		if msg.ID == messageID {
			report := Report{
				RoomCode:   r.code,
				MessageID:  messageID,
				ReporterID: playerID,
				AuthorID:   msg.PlayerID,
				Text:       msg.Text,
				Reason:     reason,
			}
			go func() {
				if err := r.opts.Archiver.SaveChatReport(report); err != nil {
					logger.Log.Error("failed to save chat report", zap.String("room", report.RoomCode), zap.Error(err))
				}
			}()
			return nil
		}
	}
	return appErr.ErrMessageNotFound
}

// ── broadcasting ─────────────────────────────────────────────────────

func (r *Room) broadcastStateLocked() {
	r.seq++
	seq := r.seq
	for playerID, ch := range r.subscribers {
		view := buildClientView(r.state, playerID)
		select {
		case ch <- OutgoingMessage{Type: "game-state", Seq: seq, Data: view}:
		default:
			logger.Log.Warn("subscriber channel full, dropping state",
				zap.String("room", r.code), zap.String("player", playerID))
		}
	}
}

func (r *Room) pushLocked(ch chan OutgoingMessage, msgType string, data interface{}) {
	r.seq++
	select {
	case ch <- OutgoingMessage{Type: msgType, Seq: r.seq, Data: data}:
	default:
		logger.Log.Warn("subscriber channel full, dropping message",
			zap.String("room", r.code), zap.String("type", msgType))
	}
}

func (r *Room) archiveResultLocked() {
	if r.opts.Archiver == nil {
		return
	}
	s := r.state
	standings := make([]Standing, 0, len(s.Players))
	for _, p := range s.Players {
		standings = append(standings, Standing{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			IsBot:      p.IsBot,
			Score:      s.Scores[p.ID],
		})
	}
	result := Result{
		RoomCode:   r.code,
		Rounds:     s.TotalRounds,
		Standings:  standings,
		FinishedAt: time.Now(),
	}
	go func() {
		if err := r.opts.Archiver.SaveGameResult(result); err != nil {
			logger.Log.Error("failed to save game result", zap.String("room", result.RoomCode), zap.Error(err))
		}
	}()
}

func newPlayerID() string {
	return "player-" + uuid.NewString()
}
