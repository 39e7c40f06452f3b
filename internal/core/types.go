package core

// Payload carries arbitrary metadata attached to a stored point, for
// example the playable file URL of a video clip. It is serialized to a
// JSON blob at the index-store boundary and returned opaque with hits.
type Payload map[string]interface{}

// Point is the atomic unit of storage in a collection.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload,omitempty"`
}

// SearchHit is a single nearest-neighbor result. Higher score means more
// similar under the collection's cosine metric.
type SearchHit struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Payload Payload `json:"payload,omitempty"`
}
