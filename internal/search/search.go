// Package search implements note retrieval: newest-first pagination, lexical
// search with a substring fallback, and embedding-based vector search.
package search

import (
	"context"

	"github.com/streed/mod-notes/internal/embeddings"
	"github.com/streed/mod-notes/internal/models"
)

// Store is the corpus the engines read from. NoteRepository satisfies it.
type Store interface {
	Count(ctx context.Context) (int, error)
	ListOrderedByCreatedDesc(ctx context.Context, skip, take int) ([]*models.Note, error)
	// TextSearch may fail with errors.ErrIndexUnavailable
	TextSearch(ctx context.Context, query string) ([]*models.Note, error)
	SubstringSearch(ctx context.Context, query string) ([]*models.Note, error)
	GetAll(ctx context.Context) ([]*models.Note, error)
	GetByID(ctx context.Context, id int) (*models.Note, error)
}

// Engine binds the retrieval operations to a store and an embedder. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	store       Store
	embedder    embeddings.Embedder
	concurrency int
}

type Option func(*Engine)

// WithConcurrency bounds the number of in-flight embedding calls per vector search
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEngine(store Store, embedder embeddings.Embedder, opts ...Option) *Engine {
	e := &Engine{store: store, embedder: embedder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) List(ctx context.Context, page, limit int) (*Page, error) {
	return Paginate(ctx, e.store, page, limit)
}

func (e *Engine) Lexical(ctx context.Context, query string) (*LexicalResult, error) {
	return LexicalSearch(ctx, e.store, query)
}

func (e *Engine) Vector(ctx context.Context, query string, limit int) ([]*ScoredNote, error) {
	return VectorSearch(ctx, e.store, e.embedder, query, limit, e.concurrency)
}

func (e *Engine) Get(ctx context.Context, id int) (*models.Note, error) {
	return e.store.GetByID(ctx, id)
}
