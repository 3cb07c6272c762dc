package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CartItem is one line of a client-submitted cart after coercion. It is never
// persisted as-is; the order pipeline turns it into an OrderLine.
type CartItem struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice float64
}

// rawCartItem is the wire shape of a cart line. Fields arrive as raw JSON so
// that both numbers and numeric strings are accepted; each one is coerced
// independently.
type rawCartItem struct {
	ID       json.RawMessage `json:"id"`
	Quantity json.RawMessage `json:"cantidad"`
	Price    json.RawMessage `json:"precio"`
	Name     string          `json:"nombre"`
}

// CartParseError reports which cart line could not be coerced. Any such
// failure aborts the whole submission before any mutation happens.
type CartParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *CartParseError) Error() string {
	return fmt.Sprintf("cart line %d: invalid %s: %v", e.Line, e.Field, e.Err)
}

func (e *CartParseError) Unwrap() error { return e.Err }

func (e *CartParseError) OrderRejection() {}

// ParseCart decodes a serialized cart, coercing id, cantidad and precio on
// every line. Quantity defaults to 1 when absent and must be positive; id and
// precio are required.
func ParseCart(data []byte) ([]CartItem, error) {
	var raw []rawCartItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CartParseError{Line: 0, Field: "cart", Err: err}
	}

	items := make([]CartItem, 0, len(raw))
	for i, r := range raw {
		id, err := coerceInt(r.ID)
		if err != nil {
			return nil, &CartParseError{Line: i, Field: "id", Err: err}
		}

		qty := 1
		if len(r.Quantity) > 0 {
			q, err := coerceInt(r.Quantity)
			if err != nil {
				return nil, &CartParseError{Line: i, Field: "cantidad", Err: err}
			}
			qty = int(q)
		}
		if qty < 1 {
			return nil, &CartParseError{Line: i, Field: "cantidad", Err: fmt.Errorf("quantity must be at least 1, got %d", qty)}
		}

		price, err := coerceFloat(r.Price)
		if err != nil {
			return nil, &CartParseError{Line: i, Field: "precio", Err: err}
		}

		items = append(items, CartItem{
			ProductID: id,
			Name:      r.Name,
			Quantity:  qty,
			UnitPrice: price,
		})
	}
	return items, nil
}

func coerceInt(raw json.RawMessage) (int64, error) {
	s := unquote(raw)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	// tolerate "2.0" style input
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func coerceFloat(raw json.RawMessage) (float64, error) {
	s := unquote(raw)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(s, 64)
}

func unquote(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
