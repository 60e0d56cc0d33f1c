package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/holdfast/yieldscore/internal/composite"
	"github.com/holdfast/yieldscore/internal/domain"
)

type fixtureEntry struct {
	Class     string                      `yaml:"class"`
	ClassConf float64                     `yaml:"class_confidence"`
	Features  map[string]float64          `yaml:"features"`
	Labels    map[string]string           `yaml:"labels"`
	Sources   []string                    `yaml:"sources"`
	Sentiment []composite.SentimentSignal `yaml:"sentiment"`
}

type fixtureFile struct {
	Tickers map[string]fixtureEntry `yaml:"tickers"`
}

// StaticProvider serves features, classifications, and sentiment from a
// YAML fixture file. It backs the CLI's offline mode and most tests.
type StaticProvider struct {
	mu      sync.RWMutex
	entries map[string]fixtureEntry
}

// LoadStaticProvider reads the fixture file at path.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	entries := make(map[string]fixtureEntry, len(f.Tickers))
	for t, e := range f.Tickers {
		entries[strings.ToUpper(t)] = e
	}
	return &StaticProvider{entries: entries}, nil
}

// NewStaticProvider builds a provider from in-memory securities, used by
// tests that do not want a fixture file.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{entries: map[string]fixtureEntry{}}
}

// Put registers or replaces a ticker entry.
func (p *StaticProvider) Put(ticker string, class domain.AssetClass, bag domain.FeatureBag, signals ...composite.SentimentSignal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[strings.ToUpper(ticker)] = fixtureEntry{
		Class:     string(class),
		ClassConf: 1.0,
		Features:  bag.Values,
		Labels:    bag.Labels,
		Sources:   []string{"fixture"},
		Sentiment: signals,
	}
}

func (p *StaticProvider) lookup(ticker string) (fixtureEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[strings.ToUpper(ticker)]
	return e, ok
}

func (p *StaticProvider) Features(ctx context.Context, ticker string) (domain.FeatureBag, []string, error) {
	e, ok := p.lookup(ticker)
	if !ok {
		return domain.FeatureBag{}, nil, &domain.DataUnavailableError{Ticker: ticker, Cause: fmt.Errorf("no fixture entry")}
	}
	sources := e.Sources
	if len(sources) == 0 {
		sources = []string{"fixture"}
	}
	return domain.FeatureBag{Values: e.Features, Labels: e.Labels}, sources, nil
}

func (p *StaticProvider) Classify(ctx context.Context, ticker string) (domain.AssetClass, float64, error) {
	e, ok := p.lookup(ticker)
	if !ok {
		return domain.ClassUnknown, 0, &domain.DataUnavailableError{Ticker: ticker, Cause: fmt.Errorf("no fixture entry")}
	}
	class := domain.AssetClass(e.Class)
	if !class.Valid() {
		class = domain.ClassUnknown
	}
	conf := e.ClassConf
	if conf == 0 {
		conf = 1.0
	}
	return class, conf, nil
}

func (p *StaticProvider) Sentiment(ctx context.Context, ticker string) ([]composite.SentimentSignal, error) {
	e, ok := p.lookup(ticker)
	if !ok {
		return nil, nil
	}
	return e.Sentiment, nil
}
