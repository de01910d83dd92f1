package registry

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ohhell-service/internal/game"
	appErr "ohhell-service/pkg/errors"
	"ohhell-service/pkg/logger"
	"ohhell-service/pkg/utils/random"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	codeLength         = 4
	codeReservationTTL = 24 * time.Hour
	redisOpTimeout     = 2 * time.Second
)

// Registry maps short room codes to live room actors. Rooms remove
// themselves through the OnRemove hook when they expire or empty out.
//
// When a redis client is supplied, allocated codes are additionally reserved
// cluster-wide so two instances behind one load balancer never hand out the
// same code.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*game.Room

	baseOpts game.Options
	rdb      *redis.Client
}

func New(baseOpts game.Options, rdb *redis.Client) *Registry {
	return &Registry{
		rooms:    make(map[string]*game.Room),
		baseOpts: baseOpts,
		rdb:      rdb,
	}
}

// CreateRoom allocates a fresh code, spins up the room actor with the caller
// as host, and returns the room plus the host's player id.
func (reg *Registry) CreateRoom(hostName string) (*game.Room, string, error) {
	name := game.SanitizeName(hostName)
	if name == "" {
		return nil, "", appErr.ErrNameRequired
	}

	code := reg.allocate()
	opts := reg.baseOpts
	opts.OnRemove = reg.Remove
	// Rooms mutate their rng under their own mutex, so a shared baseOpts.Rng
	// would race; each room gets an independently seeded one.
	if reg.baseOpts.Rng != nil {
		reg.mu.Lock()
		opts.Rng = rand.New(rand.NewSource(reg.baseOpts.Rng.Int63()))
		reg.mu.Unlock()
	}

	room, hostID := game.NewRoom(code, name, opts)

	reg.mu.Lock()
	reg.rooms[code] = room
	reg.mu.Unlock()

	logger.Log.Info("room created", zap.String("room", code))
	return room, hostID, nil
}

// Lookup resolves a room code, case-insensitively. Codes reserved by an
// in-flight CreateRoom do not resolve yet.
func (reg *Registry) Lookup(code string) (*game.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[strings.ToUpper(code)]
	return room, ok && room != nil
}

// Remove forgets a room and releases its code reservation.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	delete(reg.rooms, code)
	reg.mu.Unlock()

	if reg.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if err := reg.rdb.Del(ctx, codeKey(code)).Err(); err != nil {
			logger.Log.Warn("failed to release room code", zap.String("room", code), zap.Error(err))
		}
	}
	logger.Log.Info("room removed", zap.String("room", code))
}

// Stats reports the number of live rooms and connected humans.
func (reg *Registry) Stats() (rooms, players int) {
	reg.mu.Lock()
	snapshot := make([]*game.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		if room != nil {
			snapshot = append(snapshot, room)
		}
	}
	reg.mu.Unlock()

	for _, room := range snapshot {
		players += room.ConnectedCount()
	}
	return len(snapshot), players
}

func (reg *Registry) allocate() string {
	for {
		code := random.Code(codeLength)

		reg.mu.Lock()
		if _, taken := reg.rooms[code]; taken {
			reg.mu.Unlock()
			continue
		}
		// Reserve the code before releasing the lock so a concurrent
		// allocate cannot hand out the same one.
		reg.rooms[code] = nil
		reg.mu.Unlock()

		if reg.rdb != nil {
			ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
			reserved, err := reg.rdb.SetNX(ctx, codeKey(code), "1", codeReservationTTL).Result()
			cancel()
			if err != nil {
				// Redis being down must not block room creation; fall back to
				// local uniqueness.
				logger.Log.Warn("room code reservation failed", zap.Error(err))
				return code
			}
			if !reserved {
				reg.mu.Lock()
				delete(reg.rooms, code)
				reg.mu.Unlock()
				continue
			}
		}
		return code
	}
}

func codeKey(code string) string {
	return "ohhell:room-code:" + code
}
