package memindex

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestCosineIdentical(t *testing.T) {
	v := []float32{0.3, -1.2, 4, 0.01}
	if s := Cosine(v, v); !near(s, 1) {
		t.Fatalf("cos(v,v)=%v", s)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	if s := Cosine([]float32{1, 0}, []float32{0, 1}); s != 0 {
		t.Fatalf("got %v", s)
	}
}

func TestCosineOpposite(t *testing.T) {
	v := []float32{1, 2, 3}
	w := []float32{-1, -2, -3}
	if s := Cosine(v, w); !near(s, -1) {
		t.Fatalf("got %v", s)
	}
}

func TestCosineDegenerate(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"mismatched", []float32{1, 2}, []float32{1, 2, 3}},
		{"empty", nil, nil},
	}
	for _, c := range cases {
		if s := Cosine(c.a, c.b); s != 0 {
			t.Fatalf("%s: got %v", c.name, s)
		}
	}
}

func TestVectorCodecLittleEndian(t *testing.T) {
	b := encodeVector([]float32{1})
	if len(b) != 4 || b[0] != 0x00 || b[3] != 0x3f || b[2] != 0x80 {
		t.Fatalf("unexpected layout % x", b)
	}
	v, err := decodeVector(encodeVector([]float32{1.5, -2, 0}))
	if err != nil || len(v) != 3 || v[0] != 1.5 || v[1] != -2 {
		t.Fatalf("decode: %v %v", v, err)
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for truncated blob")
	}
}
