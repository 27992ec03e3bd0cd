package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid blends keyword and vector ranking via the alpha factor.
	Hybrid Mode = "hybrid"
	// Keyword is pure lexical ranking (hybrid with alpha pinned to 0).
	Keyword Mode = "keyword"
	// Similar is nearest-neighbor semantic ranking.
	Similar Mode = "similar"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Keyword || m == Similar
}
