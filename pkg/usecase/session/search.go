package session

import (
	"context"

	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
)

// Search runs a top-k similarity search over the session's memory.
func (s *Session) Search(ctx context.Context, query string, k int) ([]*model.SearchResult, error) {
	logging.From(ctx).Debug("searching memory", "query", query, "k", k)
	return s.store.Search(query, k)
}
