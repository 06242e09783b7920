package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/models"
)

// memStore is an in-memory Store. Notes are kept in insertion order; a later
// note counts as newer.
type memStore struct {
	mu    sync.Mutex
	notes []*models.Note

	textSearch func(query string) ([]*models.Note, error)
	err        error

	textCalls      int
	substringCalls int
}

func newMemStore(titles ...string) *memStore {
	s := &memStore{}
	for _, title := range titles {
		s.add(title, title+" body")
	}
	return s
}

func (s *memStore) add(title, body string) *models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := time.Date(2024, 1, 1, 0, 0, len(s.notes), 0, time.UTC)
	note := &models.Note{
		ID:        len(s.notes) + 1,
		Title:     title,
		Body:      body,
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.notes = append(s.notes, note)
	return note
}

func (s *memStore) Count(context.Context) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.notes), nil
}

func (s *memStore) ListOrderedByCreatedDesc(_ context.Context, skip, take int) ([]*models.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*models.Note{}
	for i := len(s.notes) - 1 - skip; i >= 0 && len(out) < take; i-- {
		out = append(out, s.notes[i])
	}
	return out, nil
}

func (s *memStore) TextSearch(_ context.Context, query string) ([]*models.Note, error) {
	s.textCalls++
	if s.textSearch != nil {
		return s.textSearch(query)
	}
	return nil, interrors.ErrIndexUnavailable
}

func (s *memStore) SubstringSearch(_ context.Context, query string) ([]*models.Note, error) {
	s.substringCalls++
	if s.err != nil {
		return nil, s.err
	}
	q := strings.ToLower(query)
	out := []*models.Note{}
	for _, n := range s.notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Body), q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memStore) GetAll(context.Context) ([]*models.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]*models.Note(nil), s.notes...), nil
}

func (s *memStore) GetByID(_ context.Context, id int) (*models.Note, error) {
	for _, n := range s.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, interrors.ErrNoteNotFound
}

// mockStore fails the test on any call it was not told to expect
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ListOrderedByCreatedDesc(ctx context.Context, skip, take int) ([]*models.Note, error) {
	args := m.Called(ctx, skip, take)
	return notesArg(args, 0), args.Error(1)
}

func (m *mockStore) TextSearch(ctx context.Context, query string) ([]*models.Note, error) {
	args := m.Called(ctx, query)
	return notesArg(args, 0), args.Error(1)
}

func (m *mockStore) SubstringSearch(ctx context.Context, query string) ([]*models.Note, error) {
	args := m.Called(ctx, query)
	return notesArg(args, 0), args.Error(1)
}

func (m *mockStore) GetAll(ctx context.Context) ([]*models.Note, error) {
	args := m.Called(ctx)
	return notesArg(args, 0), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id int) (*models.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func notesArg(args mock.Arguments, i int) []*models.Note {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]*models.Note)
}

// topicEmbedder maps AI/ML text to [1,1,0,0] and anything else to [0,0,1,1]
type topicEmbedder struct {
	calls atomic.Int32
}

func (e *topicEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)
	for _, kw := range []string{"ai ", "artificial intelligence", "machine learning"} {
		if strings.Contains(lower+" ", kw) {
			return []float32{1, 1, 0, 0}, nil
		}
	}
	return []float32{0, 0, 1, 1}, nil
}

func (e *topicEmbedder) Dimensions() int { return 4 }

// tableEmbedder returns a fixed vector per text, optionally delaying so that
// later notes finish first.
type tableEmbedder struct {
	vectors map[string][]float32
	delay   func(text string) time.Duration
	fail    map[string]error
}

func (e *tableEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.delay != nil {
		select {
		case <-time.After(e.delay(text)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := e.fail[text]; ok {
		return nil, err
	}
	vec, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func (e *tableEmbedder) Dimensions() int { return 2 }

var errBoom = errors.New("boom")
