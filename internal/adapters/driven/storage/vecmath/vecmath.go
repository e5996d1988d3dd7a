// Package vecmath holds the vector encoding and distance helpers shared by
// the brute-force vector stores.
package vecmath

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// Encode converts a float32 slice to a little-endian binary blob.
func Encode(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// Decode converts a little-endian binary blob to a float32 slice.
func Decode(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	count := len(blob) / 4
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

// CosineDistance returns 1 - cosine similarity, in [0, 2].
// Vectors of different length, or with zero norm, are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	d := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	// Clamp rounding noise.
	return math.Max(0, math.Min(2, d))
}

// SortAndTruncate orders results by distance, then ID, and keeps the first k.
func SortAndTruncate(results []domain.QueryResult, k int) []domain.QueryResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// MatchesFilter reports whether metadata equals every filter entry.
// Values are compared in their text form, so 2020 matches "2020".
func MatchesFilter(meta domain.Metadata, filter map[string]string) bool {
	for k, want := range filter {
		if meta.String(k) != want {
			return false
		}
	}
	return true
}

// EncodeMetadata serialises metadata as a JSON object.
func EncodeMetadata(meta domain.Metadata) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

// DecodeMetadata parses a JSON object, keeping whole numbers as int64.
func DecodeMetadata(data []byte) (domain.Metadata, error) {
	meta := domain.Metadata{}
	if len(data) == 0 {
		return meta, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	for k, v := range meta {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			meta[k] = i
		} else if f, err := n.Float64(); err == nil {
			meta[k] = f
		} else {
			meta[k] = n.String()
		}
	}
	return meta, nil
}
