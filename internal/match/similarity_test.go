package match

import (
	"math"
	"testing"

	"github.com/alirezadp10/ezapply/internal/model"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75, 0}
	got := DecodeVec(EncodeVec(vec))
	if len(got) != len(vec) {
		t.Fatalf("len = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestDecodeVec_BadBlob(t *testing.T) {
	if DecodeVec([]byte{1, 2, 3}) != nil {
		t.Error("odd-length blob should decode to nil")
	}
	if DecodeVec(nil) != nil {
		t.Error("nil blob should decode to nil")
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	if got := Cosine(a, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors = %v, want 1", got)
	}
	if got := Cosine(a, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors = %v, want 0", got)
	}
	if got := Cosine(a, []float32{0, 0}); got != 0 {
		t.Errorf("zero vector = %v, want 0", got)
	}
	if got := Cosine(a, []float32{1, 0, 0}); got != 0 {
		t.Errorf("dimension mismatch = %v, want 0", got)
	}
}

func TestBestMatch(t *testing.T) {
	history := []model.StoredField{
		{Label: "Years of experience", Value: "5", Embedding: EncodeVec([]float32{1, 0, 0})},
		{Label: "Notice period", Value: "30", Embedding: EncodeVec([]float32{0, 1, 0})},
		{Label: "broken row", Value: "x", Embedding: []byte{1, 2}},
	}

	got, ok := BestMatch([]float32{0.99, 0.05, 0}, history, 0.95)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != "5" {
		t.Errorf("matched %q, want the experience row", got.Label)
	}
}

func TestBestMatch_BelowThreshold(t *testing.T) {
	history := []model.StoredField{
		{Label: "Notice period", Value: "30", Embedding: EncodeVec([]float32{0, 1})},
	}
	if _, ok := BestMatch([]float32{1, 0.2}, history, 0.95); ok {
		t.Error("dissimilar vector should not match at 0.95")
	}
}

func TestBestMatch_EmptyHistory(t *testing.T) {
	if _, ok := BestMatch([]float32{1, 0}, nil, 0.5); ok {
		t.Error("empty history should never match")
	}
}
