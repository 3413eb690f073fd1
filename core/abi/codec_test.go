package abi

import (
	"math/big"
	"testing"
)

func roundTrip(t *testing.T, params []Param) []Param {
	t.Helper()
	encoded, err := Encode(params)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	types := make([]ParamType, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	decoded, err := Decode(encoded, types)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decoded
}

func TestScalarRoundTrip(t *testing.T) {
	params := []Param{
		NewU8(200),
		NewI8(-100),
		NewU16(60000),
		NewI16(-30000),
		NewU32(4000000000),
		NewI32(-2000000000),
		NewU64(18000000000000000000),
		NewI64(-9000000000000000000),
		NewBool(true),
		NewStr("hello, sir"),
	}
	got := roundTrip(t, params)
	if len(got) != len(params) {
		t.Fatalf("expected %d params, got %d", len(params), len(got))
	}
	if got[0].U8 != 200 || got[1].I8 != -100 {
		t.Errorf("8-bit mismatch: %+v %+v", got[0], got[1])
	}
	if got[9].S != "hello, sir" {
		t.Errorf("string mismatch: %q", got[9].S)
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	u128 := new(big.Int).Lsh(big.NewInt(1), 100)
	i128 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 90))
	u256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	i256 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 200))

	params := []Param{
		NewU128(u128),
		NewI128(i128),
		NewU256(u256),
		NewI256(i256),
	}
	got := roundTrip(t, params)
	cases := []struct {
		name string
		want *big.Int
		got  *big.Int
	}{
		{"u128", u128, got[0].Big},
		{"i128", i128, got[1].Big},
		{"u256", u256, got[2].Big},
		{"i256", i256, got[3].Big},
	}
	for _, c := range cases {
		if c.want.Cmp(c.got) != 0 {
			t.Errorf("%s mismatch: want %s got %s", c.name, c.want, c.got)
		}
	}
}

func TestArrayRoundTrip(t *testing.T) {
	params := []Param{
		NewU32Array([]uint32{1, 2, 3, 4}),
		NewStrArray([]string{"a", "bb", "ccc"}),
		NewBoolArray([]bool{true, false, true}),
	}
	got := roundTrip(t, params)
	if len(got[0].U32s) != 4 || got[0].U32s[2] != 3 {
		t.Errorf("u32 array mismatch: %v", got[0].U32s)
	}
	if len(got[1].Strs) != 3 || got[1].Strs[1] != "bb" {
		t.Errorf("str array mismatch: %v", got[1].Strs)
	}
}

func TestMapRoundTrip(t *testing.T) {
	m := map[string]uint64{"zeta": 3, "alpha": 1, "mid": 2}
	params := []Param{NewStrU64Map(m)}
	got := roundTrip(t, params)
	for k, v := range m {
		if got[0].U64Map[k] != v {
			t.Errorf("map entry %q: want %d got %d", k, v, got[0].U64Map[k])
		}
	}
}

func TestMapEncodingIsDeterministic(t *testing.T) {
	m := map[string]uint64{"zeta": 3, "alpha": 1, "mid": 2}
	a, err := Encode([]Param{NewStrU64Map(m)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode([]Param{NewStrU64Map(m)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("map encoding is not deterministic across calls")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	if _, err := Decode([]byte{99, 1}, []ParamType{PTU8}); err == nil {
		t.Fatal("expected error for unsupported wire version")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	encoded, err := Encode([]Param{NewU8(7), NewU8(8)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(encoded, []ParamType{PTU8}); err == nil {
		t.Fatal("expected error for undeclared trailing parameter")
	}
}
