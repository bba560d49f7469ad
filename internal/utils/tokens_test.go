package utils

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"
)

func TestNewObjectID(t *testing.T) {
	before := time.Now().Unix()
	id, err := NewObjectID()
	if err != nil {
		t.Fatal(err)
	}
	if !IsObjectID(id) {
		t.Fatalf("%q is not a valid object id", id)
	}

	raw, _ := hex.DecodeString(id)
	ts := int64(binary.BigEndian.Uint32(raw[:4]))
	if ts < before || ts > time.Now().Unix() {
		t.Errorf("timestamp prefix %d out of range", ts)
	}

	other, _ := NewObjectID()
	if other == id {
		t.Error("two ids must differ")
	}
}

func TestNormalizeObjectID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"65A1B2C3D4E5F60718293A4B", "65a1b2c3d4e5f60718293a4b", true},
		{"65a1b2c3d4e5f60718293a4b", "65a1b2c3d4e5f60718293a4b", true},
		{"abc", "", false},
		{"65a1b2c3d4e5f60718293a4g", "", false},
		{"65a1b2c3d4e5f60718293a4b0", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeObjectID(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeObjectID(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
