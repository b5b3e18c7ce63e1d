package credit

import (
	"math/rand"
	"sync"
	"testing"

	"help-desk/domain"
	"help-desk/llm"

	"github.com/stretchr/testify/require"
)

var sonnet = llm.ModelDescriptor{ID: llm.ModelSonnet45, InputCostPerMillion: 3}

func TestManager_Track(t *testing.T) {
	req := require.New(t)

	// Given a schools subscription with 100 credits
	m := NewManager(domain.SubscriptionState{Plan: domain.PlanSchools, CreditsRemaining: 100, CreditsUsed: 20}, nil)

	// When one million input tokens and one hundred thousand output tokens are tracked
	event := m.Track(sonnet, 1_000_000, 100_000)

	// Then the cost is (3 + 0.1*15) dollars, in credits
	req.InDelta(450.0, event.Cost, 1e-9)
	req.Equal(1, event.Calls)
	req.Equal(event, m.SessionUsage())

	// Then remaining credits never go negative
	req.Zero(m.Remaining())
	sub := m.Subscription()
	req.Zero(sub.CreditsRemaining)
	req.InDelta(470.0, sub.CreditsUsed, 1e-9)
	req.Equal(domain.PlanSchools, sub.Plan)
}

func TestManager_SmallUsage(t *testing.T) {
	req := require.New(t)
	m := NewManager(domain.SubscriptionState{Plan: domain.PlanFree, CreditsRemaining: 10}, nil)

	m.Track(sonnet, 1000, 500)
	m.Track(sonnet, 2000, 0)

	// 1000*3 + 500*15 + 2000*3 = 16500 micro-dollars = 1.65 credits
	req.InDelta(1.65, m.SessionUsage().Cost, 1e-9)
	req.InDelta(8.35, m.Remaining(), 1e-9)
	req.Equal(2, m.SessionUsage().Calls)
	req.Equal(3000, m.SessionUsage().PromptTokens)
}

func TestManager_RemainingNeverNegative(t *testing.T) {
	req := require.New(t)
	m := NewManager(domain.SubscriptionState{Plan: domain.PlanTrusts, CreditsRemaining: 5}, nil)
	rng := rand.New(rand.NewSource(42))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		p, c := rng.Intn(200_000)-1000, rng.Intn(50_000)
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Track(sonnet, p, c)
		}()
	}
	wg.Wait()

	req.GreaterOrEqual(m.Remaining(), 0.0)
	req.Equal(50, m.SessionUsage().Calls)
}
