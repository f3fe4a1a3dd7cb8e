// Package match reuses answers from previously filled form fields by
// comparing label embeddings with cosine similarity.
package match

import (
	"encoding/binary"
	"math"

	"github.com/alirezadp10/ezapply/internal/model"
)

// EncodeVec serializes a float32 vector as little-endian bytes for storage.
func EncodeVec(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	out := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// DecodeVec deserializes a blob produced by EncodeVec. Blobs whose length is
// not a multiple of 4 decode to nil.
func DecodeVec(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors, 0 for zero vectors
// or mismatched dimensions.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BestMatch finds the stored field whose label embedding is most similar to
// vec. Returns false when no candidate reaches the threshold. History rows
// with missing or dimension-mismatched embeddings are skipped.
func BestMatch(vec []float32, history []model.StoredField, threshold float64) (model.StoredField, bool) {
	var (
		best      model.StoredField
		bestScore = -1.0
	)
	for _, h := range history {
		hv := DecodeVec(h.Embedding)
		if len(hv) != len(vec) {
			continue
		}
		if score := Cosine(vec, hv); score > bestScore {
			bestScore = score
			best = h
		}
	}
	if bestScore >= threshold {
		return best, true
	}
	return model.StoredField{}, false
}
