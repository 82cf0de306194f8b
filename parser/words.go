package parser

import (
	"context"

	"github.com/tsawler/tabscan/model"
)

// StaticWords is a WordSource backed by a map from page number to words
// already in points.
type StaticWords map[int][]Word

// Words returns the words stored for page.
func (s StaticWords) Words(ctx context.Context, page int, _ model.PageSize) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s[page], nil
}
