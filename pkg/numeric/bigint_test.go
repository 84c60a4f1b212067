package numeric

import (
	"math/big"
	"testing"
)

func TestParse_LargeValue(t *testing.T) {
	const raw = "1000000000000000000000000000000" // 10^30
	b, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if b.String() != raw {
		t.Fatalf("round trip = %s, want %s", b.String(), raw)
	}
}

func TestParse_RejectsNegativeAndGarbage(t *testing.T) {
	if _, err := Parse("-1"); err == nil {
		t.Fatal("want error for negative")
	}
	if _, err := Parse("12x"); err == nil {
		t.Fatal("want error for non-numeric")
	}
}

func TestScan_Variants(t *testing.T) {
	var b BigInt
	if err := b.Scan("505000000000000000"); err != nil {
		t.Fatalf("Scan string err: %v", err)
	}
	if b.String() != "505000000000000000" {
		t.Fatalf("got %s", b.String())
	}
	if err := b.Scan([]byte("42")); err != nil {
		t.Fatalf("Scan bytes err: %v", err)
	}
	if b.String() != "42" {
		t.Fatalf("got %s", b.String())
	}
	if err := b.Scan(int64(7)); err != nil {
		t.Fatalf("Scan int64 err: %v", err)
	}
	if b.String() != "7" {
		t.Fatalf("got %s", b.String())
	}
	if err := b.Scan(nil); err != nil {
		t.Fatalf("Scan nil err: %v", err)
	}
	if b.Sign() != 0 {
		t.Fatalf("nil scan should zero, got %s", b.String())
	}
}

func TestValue_IsDecimalString(t *testing.T) {
	b := NewBigInt(big.NewInt(123456789))
	v, err := b.Value()
	if err != nil {
		t.Fatalf("Value err: %v", err)
	}
	if v.(string) != "123456789" {
		t.Fatalf("Value = %v", v)
	}
}

func TestInt_ReturnsCopy(t *testing.T) {
	b := NewBigInt(big.NewInt(10))
	c := b.Int()
	c.SetInt64(99)
	if b.String() != "10" {
		t.Fatalf("stored value mutated: %s", b.String())
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	b := FromUint64(505)
	data, err := b.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON err: %v", err)
	}
	if string(data) != `"505"` {
		t.Fatalf("json = %s", data)
	}
	var out BigInt
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON err: %v", err)
	}
	if out.String() != "505" {
		t.Fatalf("got %s", out.String())
	}
}
