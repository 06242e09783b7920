package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/streed/mod-notes/internal/constants"
	"github.com/streed/mod-notes/internal/embeddings"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/models"
)

// ScoredNote is a note annotated with its similarity to a vector query
type ScoredNote struct {
	*models.Note
	Similarity float64 `json:"_similarity"`
}

// VectorSearch ranks the whole corpus by cosine similarity to query and returns
// the top limit notes, best first. Notes with equal scores keep corpus order.
//
// Every note is embedded on every call; nothing is cached. Note embeddings run
// concurrently, at most concurrency at a time (unbounded when <= 0), and the
// ranking is applied only after all of them finish.
func VectorSearch(ctx context.Context, store Store, embedder embeddings.Embedder, query string, limit, concurrency int) ([]*ScoredNote, error) {
	if strings.TrimSpace(query) == "" {
		return []*ScoredNote{}, nil
	}
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	notes, err := store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored, err := scoreNotes(ctx, embedder, queryVec, notes, concurrency)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	if len(scored) > 0 {
		logger.Debug("Vector search over %d notes, top similarity %.4f", len(notes), scored[0].Similarity)
	}
	return scored, nil
}

// scoreNotes fans out one embedding per note and joins before returning. Each
// result lands at its note's corpus index, so completion order never leaks
// into the output.
func scoreNotes(ctx context.Context, embedder embeddings.Embedder, queryVec []float32, notes []*models.Note, concurrency int) ([]*ScoredNote, error) {
	scored := make([]*ScoredNote, len(notes))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, note := range notes {
		// Stop issuing embeddings once the request is cancelled or a sibling failed
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			noteVec, err := embedder.Embed(gctx, note.FullText())
			if err != nil {
				return fmt.Errorf("failed to embed note %d: %w", note.ID, err)
			}
			sim, err := embeddings.CosineSimilarity(queryVec, noteVec)
			if err != nil {
				return fmt.Errorf("failed to score note %d: %w", note.ID, err)
			}
			scored[i] = &ScoredNote{Note: note, Similarity: sim}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early without any goroutine reporting it
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scored, nil
}
