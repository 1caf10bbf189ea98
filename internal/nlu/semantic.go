package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cloudwego/eino/components/embedding"
)

// SemanticResolver matches an utterance against example phrases by
// embedding similarity. It is the fallback behind the pattern resolver:
// slower, fuzzy, and gated by a similarity threshold.
type SemanticResolver struct {
	embedder  embedding.Embedder
	threshold float64
	anchors   []anchor
}

type anchor struct {
	intent string
	phrase string
	vector []float64
}

// NewSemanticResolver embeds every rule's example phrases once, up front.
// Rules without examples contribute nothing to the semantic index.
func NewSemanticResolver(ctx context.Context, embedder embedding.Embedder, rules []Rule, threshold float64) (*SemanticResolver, error) {
	r := &SemanticResolver{embedder: embedder, threshold: threshold}

	var phrases []string
	var owners []int
	for i, rule := range rules {
		for _, ex := range rule.Examples {
			phrases = append(phrases, ex)
			owners = append(owners, i)
		}
	}
	if len(phrases) == 0 {
		return r, nil
	}

	vectors, err := embedder.EmbedStrings(ctx, phrases)
	if err != nil {
		return nil, fmt.Errorf("embed intent examples: %w", err)
	}
	if len(vectors) != len(phrases) {
		return nil, fmt.Errorf("embed intent examples: got %d vectors for %d phrases", len(vectors), len(phrases))
	}

	for i, vec := range vectors {
		r.anchors = append(r.anchors, anchor{
			intent: rules[owners[i]].Intent,
			phrase: phrases[i],
			vector: vec,
		})
	}
	slog.Info("semantic intent index ready", "anchors", len(r.anchors))
	return r, nil
}

// Resolve embeds text and returns the nearest anchor's intent when its
// cosine similarity clears the threshold. Below-threshold matches resolve
// to nothing, not to the nearest wrong intent.
func (r *SemanticResolver) Resolve(ctx context.Context, text string) (*Resolution, error) {
	if len(r.anchors) == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed command: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed command: empty result")
	}
	query := vectors[0]

	best := -1
	bestScore := -1.0
	for i, a := range r.anchors {
		score := cosineSimilarity(query, a.vector)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < r.threshold {
		return nil, nil
	}

	slog.Debug("semantic intent match", "intent", r.anchors[best].intent, "phrase", r.anchors[best].phrase, "score", bestScore)
	return &Resolution{Intent: r.anchors[best].intent, Slots: map[string]any{}, Score: bestScore}, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score zero.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Chain tries resolvers in order and returns the first resolution. Errors
// from one resolver are logged, not propagated, so a flaky semantic
// backend never blocks pattern matching placed before it.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds a resolver chain. Nil entries are skipped.
func NewChain(resolvers ...Resolver) *Chain {
	c := &Chain{}
	for _, r := range resolvers {
		if r != nil {
			c.resolvers = append(c.resolvers, r)
		}
	}
	return c
}

// Resolve tries each resolver in order.
func (c *Chain) Resolve(ctx context.Context, text string) (*Resolution, error) {
	for _, r := range c.resolvers {
		res, err := r.Resolve(ctx, text)
		if err != nil {
			slog.Warn("intent resolver failed, trying next", "error", err)
			continue
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

var (
	_ Resolver = (*SemanticResolver)(nil)
	_ Resolver = (*Chain)(nil)
)
