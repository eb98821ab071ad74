package fonts

import "testing"

func TestFaceCache(t *testing.T) {
	c, err := NewCache(nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer c.Close()

	a, err := c.Face(16)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	b, _ := c.Face(16.001)
	if a != b {
		t.Fatalf("sizes within 1/64 px should share a face")
	}
	if _, err := c.Face(0); err == nil {
		t.Fatalf("expected error for zero size")
	}

	w1, h := Measure(a, "W")
	w2, _ := Measure(a, "WW")
	if w1 <= 0 || h <= 0 || w2 <= w1 {
		t.Fatalf("metrics: w1=%v w2=%v h=%v", w1, w2, h)
	}
	if asc := Ascent(a); asc <= 0 || asc > h {
		t.Fatalf("ascent %v outside (0, %v]", asc, h)
	}
}

func TestRejectsGarbageFont(t *testing.T) {
	if _, err := NewCache([]byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}
