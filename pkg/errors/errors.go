package errors

import "errors"

// Rejected actions: pure validation failures. State is unchanged and the
// error goes back to the originating connection only.
var (
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalBid       = errors.New("illegal bid")
	ErrAlreadyBid       = errors.New("bid already placed")
	ErrIllegalPlay      = errors.New("card does not follow suit")
	ErrCardNotHeld      = errors.New("card not in hand")
	ErrTrickResolving   = errors.New("trick is being resolved")
	ErrNotHost          = errors.New("only the host may do that")
	ErrRoomFull         = errors.New("room is full")
	ErrNotEnoughPlayers = errors.New("need at least 3 players to start")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotABot          = errors.New("player is not a bot")
	ErrNameRequired     = errors.New("name cannot be empty")
	ErrEmptyChat        = errors.New("chat message is empty")
	ErrReportsDisabled  = errors.New("reporting is not available")
	ErrMessageNotFound  = errors.New("chat message not found")
)

// Session errors: the client should fall back to a fresh join.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrRoomClosed     = errors.New("room has been closed")
	ErrBadToken       = errors.New("invalid seat token")
)

// IsRejectedAction reports whether err is a validation rejection rather than
// a session-level failure.
func IsRejectedAction(err error) bool {
	for _, e := range []error{
		ErrWrongPhase, ErrNotYourTurn, ErrIllegalBid, ErrAlreadyBid,
		ErrIllegalPlay, ErrCardNotHeld, ErrTrickResolving, ErrNotHost,
		ErrRoomFull, ErrNotEnoughPlayers, ErrGameInProgress, ErrNotABot,
		ErrNameRequired, ErrEmptyChat, ErrReportsDisabled, ErrMessageNotFound,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
