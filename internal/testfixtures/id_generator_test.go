package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("staff")

	first := gen.Next()
	second := gen.Next()

	if first != "staff-1" || second != "staff-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("dept")
	_ = gen.Next()
	gen.SetCounter(0)

	if next := gen.Next(); next != "dept-1" {
		t.Fatalf("expected dept-1 after reset, got %q", next)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1, got %q", next)
	}
}
