package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScoreList stores reviewer scores as a JSON array column so the same model
// works on Postgres jsonb and the sqlite test driver.
type ScoreList []float64

// Value implements driver.Valuer.
func (s ScoreList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]float64(s))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (s *ScoreList) Scan(src any) error {
	return scanJSON(src, (*[]float64)(s))
}

// Mean returns the arithmetic mean of the scores, or false when empty.
func (s ScoreList) Mean() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s)), true
}

// StringList stores a list of strings (e.g. evidence URLs) as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src any) error {
	return scanJSON(src, (*[]string)(s))
}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
