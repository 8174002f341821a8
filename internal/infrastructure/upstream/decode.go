package upstream

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Float число, которое апстримы присылают то строкой, то числом, то null.
// Valid=false означает отсутствие значения. Строка, которая не парсится,
// даёт ошибку декодирования всей записи.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))

	if s == "null" {
		*f = Float{}
		return nil
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			*f = Float{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("upstream.Float: %w", err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("upstream.Float: non-finite value %q", s)
	}

	*f = Float{Value: v, Valid: true}

	return nil
}

// Or значение или def, если поле отсутствовало.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}

	return f.Value
}

// DecodeList декодирует каждую запись отдельно. Битые записи пропускаются,
// остальные возвращаются в исходном порядке.
func DecodeList[T any](ctx context.Context, source string, raw []jsoniter.RawMessage) []T {
	out := make([]T, 0, len(raw))

	for i, item := range raw {
		var v T

		if err := json.Unmarshal(item, &v); err != nil {
			logger(ctx).Debug("skip malformed upstream record",
				"source", source,
				"index", i,
				"error", err,
			)

			continue
		}

		out = append(out, v)
	}

	return out
}
