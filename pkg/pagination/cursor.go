package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// View names a paged audit result list.
type View string

const (
	ViewKeepKill    View = "keep_kill"
	ViewSearchTerms View = "search_terms"
	ViewSQPChanges  View = "sqp_changes"
)

// Cursor is the canonical, opaque pagination token (pre-encoding) with short field names to
// minimize payload size. It is serialized to minified JSON and encoded with URL-safe base64.
//
// Fields:
//   - v:   version of the cursor schema
//   - sid: audit session ID
//   - vw:  result view being paged
//   - off: offset in rows from the start of the view
//   - ps:  page size in rows
//   - rv:  audit run sequence the view was produced by (0 when unavailable)
//   - iat: issued-at timestamp (unix seconds)
//   - fh:  optional filter hash
type Cursor struct {
	V   int    `json:"v"`
	Sid string `json:"sid"`
	Vw  View   `json:"vw"`
	Off int    `json:"off"`
	Ps  int    `json:"ps"`
	Rv  int64  `json:"rv"`
	Iat int64  `json:"iat"`
	Fh  string `json:"fh,omitempty"`
}

// EncodeCursor serializes and encodes the cursor as URL-safe base64 (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.New("cursor: empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("cursor: invalid base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cursor: invalid json: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate performs structural checks and defaulting.
func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Iat == 0 {
		c.Iat = time.Now().Unix()
	}
	if strings.TrimSpace(c.Sid) == "" {
		return errors.New("cursor: sid (session id) required")
	}
	switch c.Vw {
	case ViewKeepKill, ViewSearchTerms, ViewSQPChanges:
	default:
		return fmt.Errorf("cursor: invalid view %q", string(c.Vw))
	}
	if c.Off < 0 {
		return errors.New("cursor: off must be >= 0")
	}
	if c.Ps <= 0 {
		return errors.New("cursor: ps must be > 0")
	}
	if c.Rv < 0 {
		c.Rv = 0
	}
	return nil
}

// NextOffset computes the next offset after returning n rows.
func NextOffset(curr, n int) int {
	if curr < 0 {
		curr = 0
	}
	if n <= 0 {
		return curr
	}
	return curr + n
}

// FilterHash fingerprints filter parameters so a cursor cannot be replayed
// against a differently filtered view.
func FilterHash(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:8])
}

// Window returns the [start, end) bounds of a page over total rows.
func Window(total, off, ps int) (int, int) {
	if off > total {
		off = total
	}
	end := off + ps
	if end > total {
		end = total
	}
	return off, end
}
