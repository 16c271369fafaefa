package listing

import (
	"encoding/base64"
	"encoding/json"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

// Cursor references the last item of a fetched page. It is opaque to
// clients: the sort key and id are only meaningful to the repository
// that minted it, and the signature binds it to the query that produced
// it.
type Cursor struct {
	Key string `json:"k"`
	ID  string `json:"id"`
	Sig string `json:"s"`
}

// Encode serialises the cursor for the wire.
func (c Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses an opaque cursor and checks it against the query
// signature. A mismatch returns shared.ErrCursorMismatch so callers can
// restart from the first page.
func DecodeCursor(raw, sig string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Cursor{}, shared.ErrCursorMismatch
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, shared.ErrCursorMismatch
	}
	if c.Sig != sig || c.ID == "" {
		return Cursor{}, shared.ErrCursorMismatch
	}
	return c, nil
}
