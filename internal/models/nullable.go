package models

import (
	"database/sql/driver"
	"fmt"
)

// Categorical columns are nullable; the empty value of each enum maps to SQL NULL.

func scanNullableString(src interface{}) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T for categorical column", src)
	}
}

func nullableValue(s string) (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return s, nil
}

// Scan implements sql.Scanner.
func (b *Behavior) Scan(src interface{}) error {
	s, err := scanNullableString(src)
	*b = Behavior(s)
	return err
}

// Value implements driver.Valuer.
func (b Behavior) Value() (driver.Value, error) { return nullableValue(string(b)) }

// Scan implements sql.Scanner.
func (e *EmotionalState) Scan(src interface{}) error {
	s, err := scanNullableString(src)
	*e = EmotionalState(s)
	return err
}

// Value implements driver.Valuer.
func (e EmotionalState) Value() (driver.Value, error) { return nullableValue(string(e)) }

// Scan implements sql.Scanner.
func (a *AchievementLevel) Scan(src interface{}) error {
	s, err := scanNullableString(src)
	*a = AchievementLevel(s)
	return err
}

// Value implements driver.Valuer.
func (a AchievementLevel) Value() (driver.Value, error) { return nullableValue(string(a)) }

// Scan implements sql.Scanner.
func (t *Trend) Scan(src interface{}) error {
	s, err := scanNullableString(src)
	*t = Trend(s)
	return err
}

// Value implements driver.Valuer.
func (t Trend) Value() (driver.Value, error) { return nullableValue(string(t)) }

// Scan implements sql.Scanner.
func (p *Participation) Scan(src interface{}) error {
	s, err := scanNullableString(src)
	*p = Participation(s)
	return err
}

// Value implements driver.Valuer.
func (p Participation) Value() (driver.Value, error) { return nullableValue(string(p)) }
