//go:generate go run go.uber.org/mock/mockgen -source=knowledge.go -destination=../mocks/mock_knowledge_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/analysis/lang/en"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// KnowledgePrefix prefixes the Badger key of every stored answer.
	KnowledgePrefix = "knowledge:"
	digestPrefix    = "kdigest:"

	fieldQuestion = "question"
	fieldDomain   = "domain"
	fieldVerified = "verified"

	// candidates is how many full-text hits are weighed by term overlap.
	candidates = 5
)

var questionAnalyzer = en.NewAnalyzer()

// KnowledgeRepository is the previously verified answer store.
// Lookup returns errors.ErrKnowledgeNotFound on a miss.
type KnowledgeRepository interface {
	Lookup(ctx context.Context, question string, d domain.Domain) (CachedAnswer, error)
	Store(ctx context.Context, answer CachedAnswer) (string, error)
	List() ([]CachedAnswer, error)
}

// CachedAnswer is one stored answer. Score and Exact describe how a lookup found it:
// Score is the share of distinct question terms the two questions have in common, 1 for an exact hit.
type CachedAnswer struct {
	ID           string
	Domain       domain.Domain
	SpecialistID domain.SpecialistID
	Question     string
	Answer       string
	Sources      []string
	Verified     bool
	StoredAt     time.Time
	Score        float64
	Exact        bool
}

type knowledgeRepository struct {
	db       *badger.DB
	writer   *bluge.Writer
	log      *slog.Logger
	ttl      time.Duration
	minScore float64
}

// NewKnowledgeRepository keeps answers in Badger and indexes their questions in Bluge.
// A zero ttl keeps entries forever. minScore is the term overlap, within (0, 1], a near match needs.
func NewKnowledgeRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger, ttl time.Duration, minScore float64) KnowledgeRepository {
	return &knowledgeRepository{db: db, writer: writer, log: log, ttl: ttl, minScore: minScore}
}

func (k *knowledgeRepository) Store(_ context.Context, answer CachedAnswer) (string, error) {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	if answer.StoredAt.IsZero() {
		answer.StoredAt = time.Now().UTC()
	}
	data, err := marshalAnswer(answer)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = k.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(k.entry([]byte(KnowledgePrefix+answer.ID), data)); err != nil {
			return err
		}
		return txn.SetEntry(k.entry(digestKey(answer.Question, answer.Domain), []byte(answer.ID)))
	})
	if err != nil {
		return "", err
	}

	doc := bluge.NewDocument(answer.ID).
		AddField(bluge.NewTextField(fieldQuestion, answer.Question).WithAnalyzer(questionAnalyzer).StoreValue()).
		AddField(bluge.NewKeywordField(fieldDomain, string(answer.Domain))).
		AddField(bluge.NewKeywordField(fieldVerified, fmt.Sprint(answer.Verified)))
	if err = k.writer.Update(doc.ID(), doc); err != nil {
		return "", fmt.Errorf("index failed: %w", err)
	}
	k.log.Debug("Knowledge entry stored", "id", answer.ID, "domain", answer.Domain, "verified", answer.Verified)
	return answer.ID, nil
}

func (k *knowledgeRepository) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if k.ttl > 0 {
		e = e.WithTTL(k.ttl)
	}
	return e
}

// Lookup tries the exact normalized question first, then a near match in the same domain: a stored
// question holding every significant term of the asked one, with a term overlap of at least minScore.
// Only verified entries are returned.
func (k *knowledgeRepository) Lookup(ctx context.Context, question string, d domain.Domain) (CachedAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return CachedAnswer{}, errors.ErrEmptyQuestion
	}
	answer, err := k.exact(question, d)
	if err == nil && answer.Verified {
		answer.Exact = true
		answer.Score = 1
		return answer, nil
	}
	if err != nil && !stderrors.Is(err, errors.ErrKnowledgeNotFound) {
		return CachedAnswer{}, err
	}
	return k.search(ctx, question, d)
}

func (k *knowledgeRepository) exact(question string, d domain.Domain) (CachedAnswer, error) {
	var answer CachedAnswer
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(digestKey(question, d))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		answer, err = getAnswer(txn, string(id))
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return CachedAnswer{}, errors.ErrKnowledgeNotFound
	}
	return answer, err
}

func (k *knowledgeRepository) search(ctx context.Context, question string, d domain.Domain) (CachedAnswer, error) {
	asked := terms(question)
	if len(asked) == 0 {
		return CachedAnswer{}, errors.ErrKnowledgeNotFound
	}

	reader, err := k.writer.Reader()
	if err != nil {
		return CachedAnswer{}, fmt.Errorf("index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(question).
			SetField(fieldQuestion).
			SetAnalyzer(questionAnalyzer).
			SetOperator(bluge.MatchQueryOperatorAnd)).
		AddMust(bluge.NewTermQuery(string(d)).SetField(fieldDomain)).
		AddMust(bluge.NewTermQuery("true").SetField(fieldVerified))
	it, err := reader.Search(ctx, bluge.NewTopNSearch(candidates, query))
	if err != nil {
		return CachedAnswer{}, fmt.Errorf("search failed: %w", err)
	}

	var (
		bestID    string
		bestScore float64
	)
	match, err := it.Next()
	for err == nil && match != nil {
		var id, stored string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				id = string(value)
			case fieldQuestion:
				stored = string(value)
			}
			return true
		})
		if err != nil {
			return CachedAnswer{}, err
		}
		if score := overlap(asked, terms(stored)); score > bestScore {
			bestID, bestScore = id, score
		}
		match, err = it.Next()
	}
	if err != nil {
		return CachedAnswer{}, fmt.Errorf("search failed: %w", err)
	}
	if bestID == "" || bestScore < k.minScore {
		return CachedAnswer{}, errors.ErrKnowledgeNotFound
	}

	var answer CachedAnswer
	err = k.db.View(func(txn *badger.Txn) error {
		answer, err = getAnswer(txn, bestID)
		return err
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		// The index outlives expired Badger entries.
		return CachedAnswer{}, errors.ErrKnowledgeNotFound
	case err != nil:
		return CachedAnswer{}, err
	case !answer.Verified:
		return CachedAnswer{}, errors.ErrKnowledgeNotFound
	}
	answer.Score = bestScore
	return answer, nil
}

// terms are the distinct stemmed words of a question, stop words removed.
func terms(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range questionAnalyzer.Analyze([]byte(text)) {
		set[string(token.Term)] = struct{}{}
	}
	return set
}

// overlap is the Jaccard index of two term sets.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for term := range a {
		if _, ok := b[term]; ok {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b)-common)
}

// List returns every live entry, verified or not.
func (k *knowledgeRepository) List() ([]CachedAnswer, error) {
	var answers []CachedAnswer
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(KnowledgePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				answer, err := DecodeAnswer(val)
				if err != nil {
					return err
				}
				answers = append(answers, answer)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return answers, err
}

func getAnswer(txn *badger.Txn, id string) (CachedAnswer, error) {
	item, err := txn.Get([]byte(KnowledgePrefix + id))
	if err != nil {
		return CachedAnswer{}, err
	}
	var answer CachedAnswer
	err = item.Value(func(val []byte) error {
		answer, err = DecodeAnswer(val)
		return err
	})
	return answer, err
}

// Normalize lowercases, drops punctuation and collapses whitespace.
func Normalize(question string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, question)
	return strings.Join(strings.Fields(cleaned), " ")
}

func digestKey(question string, d domain.Domain) []byte {
	sum := blake2b.Sum256([]byte(string(d) + "\x00" + Normalize(question)))
	return []byte(digestPrefix + hex.EncodeToString(sum[:]))
}

func marshalAnswer(a CachedAnswer) ([]byte, error) {
	record, err := structpb.NewStruct(map[string]any{
		"id":            a.ID,
		"domain":        string(a.Domain),
		"specialist_id": string(a.SpecialistID),
		"question":      a.Question,
		"answer":        a.Answer,
		"sources":       lo.Map(a.Sources, func(s string, _ int) any { return s }),
		"verified":      a.Verified,
		"stored_at":     float64(a.StoredAt.Unix()),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(record)
}

// DecodeAnswer reads a value stored under KnowledgePrefix.
func DecodeAnswer(data []byte) (CachedAnswer, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(data, &record); err != nil {
		return CachedAnswer{}, err
	}
	f := record.GetFields()
	return CachedAnswer{
		ID:           f["id"].GetStringValue(),
		Domain:       domain.Domain(f["domain"].GetStringValue()),
		SpecialistID: domain.SpecialistID(f["specialist_id"].GetStringValue()),
		Question:     f["question"].GetStringValue(),
		Answer:       f["answer"].GetStringValue(),
		Sources: lo.Map(f["sources"].GetListValue().GetValues(), func(v *structpb.Value, _ int) string {
			return v.GetStringValue()
		}),
		Verified: f["verified"].GetBoolValue(),
		StoredAt: time.Unix(int64(f["stored_at"].GetNumberValue()), 0).UTC(),
	}, nil
}
