package questions

import (
	"embed"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

//go:embed data/*.csv
var questionFiles embed.FS

const DefaultLanguage = "en"

// Pair is one drawable question: the prompt everyone else answers, the
// slightly-off prompt handed to imposters, and a pool-local id used to
// avoid repeats within a room session.
type Pair struct {
	ID             int
	Prompt         string
	ImposterPrompt string
}

// Provider hands out question pairs, skipping already-used ids.
type Provider interface {
	Draw(language string, usedIDs []int) (Pair, error)
}

// CSVProvider serves pairs from the embedded per-language CSV files.
// Rooms with an unknown language tag fall back to English.
type CSVProvider struct {
	mu    sync.Mutex
	pools map[string][]Pair
	rng   *rand.Rand
}

// NewCSVProvider loads every embedded pool. CSV layout follows the
// original content files: header row, then Normal_Question,Imposter_Question.
func NewCSVProvider(rng *rand.Rand) (*CSVProvider, error) {
	entries, err := questionFiles.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("error listing question files: %v", err)
	}

	pools := make(map[string][]Pair)
	for _, entry := range entries {
		lang := strings.TrimSuffix(strings.TrimPrefix(entry.Name(), "question_pairs_"), ".csv")
		pairs, err := loadPool("data/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("error loading question pool %s: %v", entry.Name(), err)
		}
		pools[lang] = pairs
	}

	if len(pools[DefaultLanguage]) == 0 {
		return nil, fmt.Errorf("default question pool %q is missing or empty", DefaultLanguage)
	}

	return &CSVProvider{pools: pools, rng: rng}, nil
}

func loadPool(path string) ([]Pair, error) {
	f, err := questionFiles.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("question file %s has no data rows", path)
	}

	pairs := make([]Pair, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) < 2 {
			return nil, fmt.Errorf("question file %s row %d is malformed", path, i+2)
		}
		pairs = append(pairs, Pair{
			ID:             i,
			Prompt:         strings.TrimSpace(rec[0]),
			ImposterPrompt: strings.TrimSpace(rec[1]),
		})
	}
	return pairs, nil
}

// Draw picks a random pair whose id is not in usedIDs. When every pair
// has been used the pool resets and any pair may come back.
func (p *CSVProvider) Draw(language string, usedIDs []int) (Pair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool, ok := p.pools[language]
	if !ok || len(pool) == 0 {
		pool = p.pools[DefaultLanguage]
	}

	used := make(map[int]bool, len(usedIDs))
	for _, id := range usedIDs {
		used[id] = true
	}

	available := make([]Pair, 0, len(pool))
	for _, pair := range pool {
		if !used[pair.ID] {
			available = append(available, pair)
		}
	}
	if len(available) == 0 {
		// Pool exhausted for this room session
		available = pool
	}

	return available[p.rng.Intn(len(available))], nil
}
