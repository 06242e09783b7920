package models

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/streed/mod-notes/internal/constants"
	interrors "github.com/streed/mod-notes/internal/errors"
)

type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullText is the text a note is embedded from
func (n *Note) FullText() string {
	return n.Title + " " + n.Body
}

// ValidateNote trims title and body and enforces the stored length bounds.
func ValidateNote(title, body string) (string, string, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	switch {
	case title == "":
		return "", "", interrors.ErrEmptyTitle
	case body == "":
		return "", "", interrors.ErrEmptyContent
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		return "", "", fmt.Errorf("%w: %d characters max", interrors.ErrTitleTooLong, constants.MaxTitleLength)
	case utf8.RuneCountInString(body) > constants.MaxBodyLength:
		return "", "", fmt.Errorf("%w: %d characters max", interrors.ErrBodyTooLong, constants.MaxBodyLength)
	}
	return title, body, nil
}

const noteColumns = "id, title, body, created_at, updated_at"

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// storeError tags a driver failure as ErrStoreUnavailable while keeping the
// original (possibly context) error reachable through errors.Is.
func storeError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, interrors.ErrStoreUnavailable, err)
}

func (r *NoteRepository) Create(ctx context.Context, title, body string) (*Note, error) {
	title, body, err := ValidateNote(title, body)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (title, body) VALUES (?, ?)",
		title, body,
	)
	if err != nil {
		return nil, storeError("create note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storeError("get insert id", err)
	}

	return r.GetByID(ctx, int(id))
}

func (r *NoteRepository) GetByID(ctx context.Context, id int) (*Note, error) {
	var note Note
	err := r.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ?",
		id,
	).Scan(&note.ID, &note.Title, &note.Body, &note.CreatedAt, &note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrNoteNotFound
	}
	if err != nil {
		return nil, storeError("get note", err)
	}

	return &note, nil
}

func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&total); err != nil {
		return 0, storeError("count notes", err)
	}
	return total, nil
}

// ListOrderedByCreatedDesc returns up to take notes, newest first, after
// skipping skip of them. Notes created within the same timestamp tick keep
// newest-first order through the id.
func (r *NoteRepository) ListOrderedByCreatedDesc(ctx context.Context, skip, take int) ([]*Note, error) {
	if take <= 0 {
		return []*Note{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	return r.query(ctx, "list notes",
		"SELECT "+noteColumns+" FROM notes ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		take, skip,
	)
}

// TextSearch runs the query against the FTS4 index, best match first.
// Every word is matched as a quoted term and any term may match. Failures of
// the index itself surface as ErrIndexUnavailable.
func (r *NoteRepository) TextSearch(ctx context.Context, query string) ([]*Note, error) {
	match := ftsMatchExpr(query)
	if match == "" {
		return []*Note{}, nil
	}

	hits, err := r.textHits(ctx, match)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", interrors.ErrIndexUnavailable, err)
	}
	if len(hits) == 0 {
		return []*Note{}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	ids := make([]interface{}, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	found, err := r.query(ctx, "load text search hits",
		"SELECT "+noteColumns+" FROM notes WHERE id IN (?"+strings.Repeat(", ?", len(ids)-1)+")",
		ids...,
	)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*Note, len(found))
	for _, note := range found {
		byID[note.ID] = note
	}
	notes := make([]*Note, 0, len(hits))
	for _, h := range hits {
		if note, ok := byID[h.id]; ok {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

type textHit struct {
	id    int
	score float64
}

func (r *NoteRepository) textHits(ctx context.Context, match string) ([]textHit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT docid, matchinfo(notes_fts, 'pcx') FROM notes_fts WHERE notes_fts MATCH ? ORDER BY docid",
		match,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []textHit
	for rows.Next() {
		var h textHit
		var info []byte
		if err := rows.Scan(&h.id, &info); err != nil {
			return nil, err
		}
		h.score = matchScore(info)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// textColumnWeights follows the notes_fts column order: title, body
var textColumnWeights = []float64{2, 1}

// matchScore ranks a row from its matchinfo 'pcx' blob: phrase count, column
// count, then for every phrase and column the hits in this row, the hits in
// all rows and the rows with a hit. Each term scores its share of the
// corpus-wide hits, weighted by column.
func matchScore(info []byte) float64 {
	vals := make([]uint32, len(info)/4)
	for i := range vals {
		vals[i] = binary.NativeEndian.Uint32(info[i*4:])
	}
	if len(vals) < 2 {
		return 0
	}

	phrases, cols := int(vals[0]), int(vals[1])
	var score float64
	for p := 0; p < phrases; p++ {
		for c := 0; c < cols; c++ {
			base := 2 + 3*(p*cols+c)
			if base+1 >= len(vals) {
				return score
			}
			hits, total := vals[base], vals[base+1]
			if hits == 0 || total == 0 {
				continue
			}
			weight := 1.0
			if c < len(textColumnWeights) {
				weight = textColumnWeights[c]
			}
			score += weight * float64(hits) / float64(total)
		}
	}
	return score
}

// SubstringSearch returns every note whose title or body contains query,
// ignoring ASCII case, in insertion order.
func (r *NoteRepository) SubstringSearch(ctx context.Context, query string) ([]*Note, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.query(ctx, "search notes",
		"SELECT "+noteColumns+` FROM notes
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY id`,
		pattern, pattern,
	)
}

// GetAll returns the whole corpus in insertion order
func (r *NoteRepository) GetAll(ctx context.Context) ([]*Note, error) {
	return r.query(ctx, "get all notes", "SELECT "+noteColumns+" FROM notes ORDER BY id")
}

func (r *NoteRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()

	notes := []*Note{}
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.Title, &note.Body, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, storeError("scan note", err)
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}

	return notes, nil
}

// ftsMatchExpr turns free text into a MATCH expression of OR-ed quoted terms so
// punctuation in user input is never parsed as query syntax.
func ftsMatchExpr(query string) string {
	fields := strings.Fields(strings.ReplaceAll(query, `"`, " "))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
