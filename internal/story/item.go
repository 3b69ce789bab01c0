// Package story defines the story item model and its JSON loading.
package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidItem is returned when a story item record fails validation.
var ErrInvalidItem = errors.New("invalid story item")

var validate = validator.New()

// Item is one externally selected story: the text to overlay and the page to
// capture as background.
type Item struct {
	Title    string `json:"title" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	Subtitle string `json:"subtitle,omitempty"`
	Impact   string `json:"impact,omitempty"`
}

// Validate checks the item's shape.
func (i *Item) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}

// Rejected records an input item that failed validation, by its position in
// the input array.
type Rejected struct {
	Index int
	Err   error
}

// LoadItems reads a JSON array of story items from path. Records that fail
// validation are rejected individually and reported alongside the valid
// items; only an unreadable or unparseable file is an error.
func LoadItems(path string) ([]Item, []Rejected, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read items file %s: %w", path, err)
	}

	var raw []Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse items JSON %s: %w", path, err)
	}

	items := make([]Item, 0, len(raw))
	var rejected []Rejected
	for idx := range raw {
		if err := raw[idx].Validate(); err != nil {
			rejected = append(rejected, Rejected{Index: idx, Err: err})
			continue
		}
		items = append(items, raw[idx])
	}
	return items, rejected, nil
}
