package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"durak/internal/domain"
	"durak/internal/ports"

	"github.com/google/uuid"
)

// Service contains the lobby and game use-cases operating on stored aggregates.
type Service struct {
	store ports.Store
	users ports.UserDirectory
	rules Rules

	rngMu sync.Mutex
	rng   *rand.Rand

	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

// NewService constructs a Service with provided rng or a time-seeded default.
// users may be nil, in which case every player is shown as domain.UnknownUsername.
func NewService(store ports.Store, users ports.UserDirectory, rng *rand.Rand, rules Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if rules.ConflictRetries < 0 {
		rules.ConflictRetries = 0
	}
	return &Service{
		store: store,
		users: users,
		rules: rules,
		rng:   rng,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Rules returns the limits the service enforces.
func (s *Service) Rules() Rules {
	return s.rules
}

// intn draws from the shared rng; *rand.Rand is not safe for concurrent use.
func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) shuffle(deck []domain.Card) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	domain.ShuffleDeck(deck, s.rng)
}

// retryOnConflict runs attempt until it stops reporting a version conflict,
// at most 1+ConflictRetries times.
func (s *Service) retryOnConflict(attempt func() error) error {
	var err error
	for i := 0; i <= s.rules.ConflictRetries; i++ {
		err = attempt()
		if !errors.Is(err, ports.ErrVersionConflict) {
			return err
		}
	}
	return &Error{Kind: KindConflict, Message: ErrConflict.Message, Err: err}
}

func (s *Service) loadLobby(ctx context.Context, id string) (*domain.Lobby, error) {
	lobby, err := s.store.LoadLobby(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrLobbyNotFound
	}
	if err != nil {
		return nil, internalError("load lobby", err)
	}
	return lobby, nil
}

func (s *Service) loadGame(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.store.LoadGame(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, internalError("load game", err)
	}
	return game, nil
}

// saveError passes version conflicts through for retry and classifies the rest.
func saveError(op string, err error) error {
	if err == nil || errors.Is(err, ports.ErrVersionConflict) {
		return err
	}
	return internalError(op, err)
}
