package services

import (
	"context"

	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/embeddings"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/models"
	"github.com/streed/mod-notes/internal/search"
)

// Services contains all the service dependencies
type Services struct {
	Config *config.Config
	Notes  *NotesService
	Search *SearchService
}

// NewServices creates a new services container
func NewServices(cfg *config.Config, noteRepo *models.NoteRepository, embedder embeddings.Embedder) *Services {
	engine := search.NewEngine(noteRepo, embedder, search.WithConcurrency(cfg.EmbedConcurrency))

	return &Services{
		Config: cfg,
		Notes:  NewNotesService(noteRepo, engine),
		Search: NewSearchService(engine),
	}
}

// Close cleans up any resources
func (s *Services) Close() error {
	return nil
}

// NotesService handles note operations. Writes go to the repository, reads
// through the search engine's store.
type NotesService struct {
	repo   *models.NoteRepository
	engine *search.Engine
}

func NewNotesService(repo *models.NoteRepository, engine *search.Engine) *NotesService {
	return &NotesService{repo: repo, engine: engine}
}

func (s *NotesService) GetByID(ctx context.Context, id int) (*models.Note, error) {
	return s.engine.Get(ctx, id)
}

// Create validates and stores a note. Nothing is indexed for vector search;
// notes are embedded at query time.
func (s *NotesService) Create(ctx context.Context, title, body string) (*models.Note, error) {
	note, err := s.repo.Create(ctx, title, body)
	if err != nil {
		return nil, err
	}
	logger.Debug("Created note %d: %s", note.ID, note.Title)
	return note, nil
}

// SearchService handles listing and search operations
type SearchService struct {
	engine *search.Engine
}

func NewSearchService(engine *search.Engine) *SearchService {
	return &SearchService{engine: engine}
}

func (s *SearchService) List(ctx context.Context, page, limit int) (*search.Page, error) {
	return s.engine.List(ctx, page, limit)
}

func (s *SearchService) SearchNotes(ctx context.Context, query string) (*search.LexicalResult, error) {
	return s.engine.Lexical(ctx, query)
}

func (s *SearchService) VectorSearch(ctx context.Context, query string, limit int) ([]*search.ScoredNote, error) {
	return s.engine.Vector(ctx, query, limit)
}
