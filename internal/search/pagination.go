package search

import (
	"context"
	"fmt"
	"math"

	"github.com/streed/mod-notes/internal/constants"
	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/models"
)

// Page is one newest-first window over the corpus
type Page struct {
	Items []*models.Note `json:"data"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int            `json:"pages"`
}

// Paginate returns page (1-based) of size limit. A page past the end is empty,
// not an error.
func Paginate(ctx context.Context, store Store, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: got %d", interrors.ErrInvalidPage, page)
	}
	if limit < 1 || limit > constants.MaxLimit {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", interrors.ErrInvalidLimit, limit, constants.MaxLimit)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}

	items := []*models.Note{}
	// A skip that would overflow is past any real corpus
	if page-1 <= math.MaxInt/limit {
		items, err = store.ListOrderedByCreatedDesc(ctx, (page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
	}

	return &Page{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pageCount(total, limit),
	}, nil
}

func pageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
