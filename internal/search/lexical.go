package search

import (
	"context"
	"errors"
	"strings"

	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/models"
)

// Strategy records which lexical path produced a result
type Strategy int

const (
	// StrategyNone means the query was blank and the store was not consulted
	StrategyNone Strategy = iota
	// StrategyIndexed means the full-text index answered
	StrategyIndexed
	// StrategyFallback means substring matching answered
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyIndexed:
		return "indexed"
	case StrategyFallback:
		return "fallback"
	default:
		return "none"
	}
}

// LexicalResult is the tagged outcome of LexicalSearch
type LexicalResult struct {
	Notes    []*models.Note
	Strategy Strategy
}

// LexicalSearch tries the store's full-text index first and returns its hits in
// relevance order. When the index is unavailable or finds nothing, it falls back
// to a case-insensitive substring match over title and body.
func LexicalSearch(ctx context.Context, store Store, query string) (*LexicalResult, error) {
	if strings.TrimSpace(query) == "" {
		return &LexicalResult{Notes: []*models.Note{}, Strategy: StrategyNone}, nil
	}

	notes, ok, err := indexedSearch(ctx, store, query)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Debug("Text index matched %d notes for %q", len(notes), query)
		return &LexicalResult{Notes: notes, Strategy: StrategyIndexed}, nil
	}

	notes, err = store.SubstringSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Substring fallback matched %d notes for %q", len(notes), query)
	return &LexicalResult{Notes: notes, Strategy: StrategyFallback}, nil
}

// indexedSearch reports ok=false when the caller should fall back. Only an
// unavailable index is absorbed; other failures are returned.
func indexedSearch(ctx context.Context, store Store, query string) ([]*models.Note, bool, error) {
	notes, err := store.TextSearch(ctx, query)
	switch {
	case errors.Is(err, interrors.ErrIndexUnavailable):
		logger.Debug("Text index unavailable, using substring search: %v", err)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case len(notes) == 0:
		logger.Debug("Text index found nothing for %q, using substring search", query)
		return nil, false, nil
	}
	return notes, true, nil
}
