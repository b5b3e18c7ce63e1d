package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func setupKnowledge(t *testing.T, ttl time.Duration, minScore float64) KnowledgeRepository {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() {
		_ = writer.Close()
		_ = db.Close()
	})
	return NewKnowledgeRepository(db, writer, logs.GetLoggerFromLevel(slog.LevelDebug), ttl, minScore)
}

func legionellaAnswer(verified bool) CachedAnswer {
	return CachedAnswer{
		Domain:       domain.DomainEstates,
		SpecialistID: domain.EstatesCompliance,
		Question:     "What temperature should legionella water be?",
		Answer:       "Store hot water at 60°C or above and distribute it at 50°C or above. Source: HSE ACoP L8.",
		Sources:      []string{"HSE ACoP L8"},
		Verified:     verified,
	}
}

func TestKnowledgeRepository_Lookup_Exact(t *testing.T) {
	req := require.New(t)
	repo := setupKnowledge(t, 0, 1000)
	ctx := context.Background()

	// Given a verified answer
	id, err := repo.Store(ctx, legionellaAnswer(true))
	req.NoError(err)

	// When the same question is asked with different casing and punctuation
	found, err := repo.Lookup(ctx, "  what TEMPERATURE should legionella water be ", domain.DomainEstates)

	// Then the digest matches regardless of the search score threshold
	req.NoError(err)
	req.True(found.Exact)
	req.Equal(id, found.ID)
	req.Equal([]string{"HSE ACoP L8"}, found.Sources)
	req.Equal(domain.EstatesCompliance, found.SpecialistID)
	req.False(found.StoredAt.IsZero())
}

func TestKnowledgeRepository_Lookup_NearMatch(t *testing.T) {
	req := require.New(t)
	repo := setupKnowledge(t, 0, 0.75)
	ctx := context.Background()

	// Given a verified answer
	_, err := repo.Store(ctx, legionellaAnswer(true))
	req.NoError(err)

	// When the question is reworded with the same significant terms
	found, err := repo.Lookup(ctx, "Legionella: water temperatures?", domain.DomainEstates)

	// Then the stored answer is served with full term overlap
	req.NoError(err)
	req.False(found.Exact)
	req.InDelta(1.0, found.Score, 1e-9)
	req.Contains(found.Answer, "60°C")
}

func TestKnowledgeRepository_Lookup_CrowdedIndexNeedsAllTerms(t *testing.T) {
	req := require.New(t)
	repo := setupKnowledge(t, 0, 0.75)
	ctx := context.Background()

	// Given the legionella answer among thirty other verified estates answers
	_, err := repo.Store(ctx, legionellaAnswer(true))
	req.NoError(err)
	for i := range 30 {
		_, err = repo.Store(ctx, CachedAnswer{
			Domain:   domain.DomainEstates,
			Question: fmt.Sprintf("When is inspection %d of the boiler room due?", i),
			Answer:   "Annually, by a Gas Safe engineer.",
			Verified: true,
		})
		req.NoError(err)
	}

	// When a different water question shares only one term with it
	_, err = repo.Lookup(ctx, "How often must hot water and cold water outlets be flushed?", domain.DomainEstates)

	// Then nothing is served
	req.ErrorIs(err, errors.ErrKnowledgeNotFound)

	// When the asked question only covers part of a stored one
	_, err = repo.Lookup(ctx, "legionella water", domain.DomainEstates)

	// Then the overlap is too low to serve it
	req.ErrorIs(err, errors.ErrKnowledgeNotFound)
}

func TestKnowledgeRepository_Lookup_Misses(t *testing.T) {
	tests := []struct {
		name     string
		stored   CachedAnswer
		question string
		domain   domain.Domain
		minScore float64
	}{
		{
			name:     "Other domain",
			stored:   legionellaAnswer(true),
			question: "What temperature should legionella water be?",
			domain:   domain.DomainHR,
			minScore: 0.01,
		},
		{
			name:     "Unverified entry",
			stored:   legionellaAnswer(false),
			question: "What temperature should legionella water be?",
			domain:   domain.DomainEstates,
			minScore: 0.01,
		},
		{
			name:     "Overlap below threshold",
			stored:   legionellaAnswer(true),
			question: "legionella water temperature",
			domain:   domain.DomainEstates,
			minScore: 1.01,
		},
		{
			name:     "Extra term missing from the stored question",
			stored:   legionellaAnswer(true),
			question: "What temperature should legionella water in showers be?",
			domain:   domain.DomainEstates,
			minScore: 0.01,
		},
		{
			name:     "Only stop words",
			stored:   legionellaAnswer(true),
			question: "What should it be?",
			domain:   domain.DomainEstates,
			minScore: 0.01,
		},
		{
			name:     "Unrelated question",
			stored:   legionellaAnswer(true),
			question: "When is the fire drill due?",
			domain:   domain.DomainEstates,
			minScore: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			repo := setupKnowledge(t, 0, tt.minScore)
			ctx := context.Background()
			_, err := repo.Store(ctx, tt.stored)
			req.NoError(err)

			_, err = repo.Lookup(ctx, tt.question, tt.domain)

			req.ErrorIs(err, errors.ErrKnowledgeNotFound)
		})
	}
}

func TestKnowledgeRepository_Lookup_EmptyQuestion(t *testing.T) {
	repo := setupKnowledge(t, 0, 0.01)
	_, err := repo.Lookup(context.Background(), "   ", domain.DomainEstates)
	require.ErrorIs(t, err, errors.ErrEmptyQuestion)
}

func TestKnowledgeRepository_Expired(t *testing.T) {
	req := require.New(t)
	repo := setupKnowledge(t, time.Second, 0.01)
	ctx := context.Background()

	// Given an entry with a one second lifetime
	_, err := repo.Store(ctx, legionellaAnswer(true))
	req.NoError(err)

	// When it has expired
	time.Sleep(2 * time.Second)

	// Then neither the digest nor the index serve it
	_, err = repo.Lookup(ctx, "What temperature should legionella water be?", domain.DomainEstates)
	req.ErrorIs(err, errors.ErrKnowledgeNotFound)
	entries, err := repo.List()
	req.NoError(err)
	req.Empty(entries)
}

func TestKnowledgeRepository_List(t *testing.T) {
	req := require.New(t)
	repo := setupKnowledge(t, 0, 0.01)
	ctx := context.Background()

	_, err := repo.Store(ctx, legionellaAnswer(true))
	req.NoError(err)
	_, err = repo.Store(ctx, CachedAnswer{
		Domain:   domain.DomainGovernance,
		Question: "What is the quorum for a governing board meeting?",
		Answer:   "One half of the governors in post, rounded up.",
	})
	req.NoError(err)

	entries, err := repo.List()

	req.NoError(err)
	req.Len(entries, 2)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"What temperature should legionella water be?", "what temperature should legionella water be"},
		{"  Who is\tour DSL?? ", "who is our dsl"},
		{"EHCP annual-review deadline", "ehcp annualreview deadline"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, Normalize(tt.input))
	}
}
