package bank

import (
	"context"
	"sort"

	"github.com/inkwellhq/binder/pkg/cache"
	"github.com/inkwellhq/binder/pkg/graph"
)

const (
	// warmHotKeys bounds the hot-path strategy's candidate list.
	warmHotKeys = 10

	// warmRecentKeys bounds the recently-used strategy's candidate list.
	warmRecentKeys = 10

	// warmFanOutDocs bounds the high fan-out strategy's candidate list.
	warmFanOutDocs = 10
)

// registerStrategies wires the standard warming strategies, in priority
// order: mandatory documents, hot keys, recently used keys, high fan-out
// documents. Strategy registration cannot fail here; every strategy has a
// name and a Keys func.
func (b *Bank) registerStrategies(mandatory []string) {
	_ = b.warmer.Register(cache.Strategy{
		Name:     "mandatory-documents",
		Priority: 1,
		Enabled:  true,
		Keys: func(ctx context.Context) ([]string, error) {
			return append([]string(nil), mandatory...), nil
		},
	})

	_ = b.warmer.Register(cache.Strategy{
		Name:     "hot-keys",
		Priority: 2,
		Enabled:  true,
		Keys: func(ctx context.Context) ([]string, error) {
			return b.cache.HotKeys(warmHotKeys), nil
		},
	})

	_ = b.warmer.Register(cache.Strategy{
		Name:     "recently-used",
		Priority: 3,
		Enabled:  true,
		Keys: func(ctx context.Context) ([]string, error) {
			return b.cache.RecentKeys(warmRecentKeys), nil
		},
	})

	_ = b.warmer.Register(cache.Strategy{
		Name:     "high-fan-out",
		Priority: 4,
		Enabled:  true,
		Keys: func(ctx context.Context) ([]string, error) {
			return b.highFanOutDocuments(warmFanOutDocs), nil
		},
	})
}

// Warm runs all enabled warming strategies and returns their outcomes.
func (b *Bank) Warm(ctx context.Context) []cache.StrategyResult {
	return b.warmer.Run(ctx)
}

// SetStrategyEnabled toggles one warming strategy by name.
func (b *Bank) SetStrategyEnabled(name string, enabled bool) bool {
	return b.warmer.SetEnabled(name, enabled)
}

// highFanOutDocuments returns up to limit documents ordered by descending
// count of outgoing transclusion edges. Documents embedding many others are
// the most expensive to resolve cold, which makes them the best candidates
// to resolve early.
func (b *Bank) highFanOutDocuments(limit int) []string {
	g := b.graphs.Graph()

	type fanOut struct {
		name  string
		count int
	}

	var docs []fanOut
	for _, e := range g.Edges() {
		if e.Kind != graph.KindTransclusion {
			continue
		}

		found := false
		for i := range docs {
			if docs[i].name == e.Source {
				docs[i].count++
				found = true
				break
			}
		}
		if !found {
			docs = append(docs, fanOut{name: e.Source, count: 1})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].count != docs[j].count {
			return docs[i].count > docs[j].count
		}
		return docs[i].name < docs[j].name
	})

	if len(docs) > limit {
		docs = docs[:limit]
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.name
	}
	return names
}
