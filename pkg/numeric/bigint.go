package numeric

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// BigInt is a non-negative arbitrary-precision integer that stores as a
// DECIMAL(65,0)/TEXT column. Loan-asset amounts can reach ~10^30 base units,
// well past uint64, so every money column uses this type.
type BigInt struct {
	i big.Int
}

func NewBigInt(v *big.Int) BigInt {
	var b BigInt
	if v != nil {
		b.i.Set(v)
	}
	return b
}

func FromUint64(v uint64) BigInt {
	var b BigInt
	b.i.SetUint64(v)
	return b
}

// Parse accepts a base-10 string. Negative values are rejected; amounts in the
// ledger are never negative.
func Parse(s string) (BigInt, error) {
	var b BigInt
	if _, ok := b.i.SetString(s, 10); !ok {
		return BigInt{}, fmt.Errorf("numeric: invalid integer %q", s)
	}
	if b.i.Sign() < 0 {
		return BigInt{}, fmt.Errorf("numeric: negative integer %q", s)
	}
	return b, nil
}

// Int returns a copy; mutating the result never touches the stored value.
func (b *BigInt) Int() *big.Int { return new(big.Int).Set(&b.i) }

func (b *BigInt) Set(v *big.Int) {
	if v == nil {
		b.i.SetInt64(0)
		return
	}
	b.i.Set(v)
}

func (b *BigInt) Sign() int          { return b.i.Sign() }
func (b *BigInt) Cmp(v *big.Int) int { return b.i.Cmp(v) }
func (b *BigInt) String() string     { return b.i.String() }

func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.i.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	b.i.Set(&parsed.i)
	return nil
}

// Value implements driver.Valuer; the column holds the decimal string.
func (b BigInt) Value() (driver.Value, error) {
	return b.i.String(), nil
}

// Scan implements sql.Scanner for TEXT, DECIMAL and integer columns.
func (b *BigInt) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		b.i.SetInt64(0)
		return nil
	case int64:
		b.i.SetInt64(v)
		return nil
	case []byte:
		return b.scanString(string(v))
	case string:
		return b.scanString(v)
	default:
		return fmt.Errorf("numeric: cannot scan %T into BigInt", src)
	}
}

func (b *BigInt) scanString(s string) error {
	if s == "" {
		b.i.SetInt64(0)
		return nil
	}
	if _, ok := b.i.SetString(s, 10); !ok {
		return fmt.Errorf("numeric: cannot scan %q into BigInt", s)
	}
	return nil
}

// GormDataType keeps AutoMigrate happy on both mysql and sqlite.
func (BigInt) GormDataType() string { return "decimal(65,0)" }
