package shelf

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
)

// Item is a product snapshot kept on a shelf. The catalog stays the source of
// truth; Item only carries what the compare and wishlist views render.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Category  string          `json:"category,omitempty"`
	Rating    float64         `json:"rating,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// FromProduct snapshots a catalog product.
func FromProduct(p catalog.Product, now time.Time) Item {
	return Item{
		ID:        strings.TrimSpace(p.ID),
		Name:      p.Name,
		Price:     p.Price,
		Thumbnail: p.Image,
		Category:  p.CategoryName,
		Rating:    p.Rating,
		AddedAt:   now,
	}
}

func (i Item) sameSnapshot(o Item) bool {
	return i.ID == o.ID &&
		i.Name == o.Name &&
		i.Price.Equal(o.Price) &&
		i.Thumbnail == o.Thumbnail &&
		i.Category == o.Category &&
		i.Rating == o.Rating
}

const snapshotVersion = 1

// ErrUnsupportedVersion is returned by Decode for snapshots written by a
// newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// Encode serializes items in order.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(envelope{Version: snapshotVersion, Items: items})
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot. Both the versioned object and a bare JSON array
// are accepted. Entries without an id and repeated ids are dropped; order is
// otherwise preserved.
func Decode(data []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	var items []Item
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, errors.Wrap(err, "decode snapshot")
		}
	} else {
		var env envelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return nil, errors.Wrap(err, "decode snapshot")
		}
		if env.Version != snapshotVersion {
			return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", env.Version)
		}
		items = env.Items
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}
