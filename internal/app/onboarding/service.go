package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"durak/internal/ports"
)

// nameAttempts bounds retries when a generated username is already taken.
const nameAttempts = 3

// Result captures the outcome of onboarding one account.
type Result struct {
	Username string
	Attempts int
}

// Service gives freshly created accounts a readable name so lobbies and
// game views never show raw device ids.
type Service struct {
	accounts ports.AccountPort

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService constructs an onboarding service.
// accounts must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser assigns a generated username and display name to userID.
// A rejected name is retried with a fresh one a few times before giving up.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= nameAttempts; attempt++ {
		name := s.generateFriendlyName()
		if err := s.accounts.UpdateProfile(ctx, userID, name, name); err != nil {
			lastErr = err
			continue
		}
		return Result{Username: name, Attempts: attempt}, nil
	}
	return Result{Attempts: nameAttempts}, fmt.Errorf("failed to set profile for %s: %w", userID, lastErr)
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	s.mu.Lock()
	defer s.mu.Unlock()
	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
