package pagination

import (
	"encoding/json"
	"time"

	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/google/uuid"
)

// Cursor is an opaque pagination watermark: the (created_at, id) of the oldest
// message returned so far. Pages are filtered to rows strictly older than it.
// The id component breaks same-timestamp ties so rows are neither skipped nor
// duplicated across page boundaries.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type cursorWire struct {
	CreatedAt string `json:"created_at"`
	ID        string `json:"id"`
}

func (c Cursor) MarshalJSON() ([]byte, error) {
	return json.Marshal(cursorWire{
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID:        c.ID.String(),
	})
}

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var wire cursorWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, wire.CreatedAt)
	if err != nil {
		return leenk_errors.ErrInvalidInput
	}
	id, err := uuid.Parse(wire.ID)
	if err != nil {
		return leenk_errors.ErrInvalidInput
	}
	c.CreatedAt = createdAt
	c.ID = id
	return nil
}

// Decode parses a cursor from its serialized form. An empty string means no
// cursor (first page).
func Decode(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	var c Cursor
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, leenk_errors.ErrInvalidInput
	}
	return &c, nil
}
