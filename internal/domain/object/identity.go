package object

import "github.com/google/uuid"

// identityNamespace is the fixed UUID namespace for store identifiers.
// Changing it invalidates every existing key in the index.
var identityNamespace = uuid.MustParse("6ba0c9a2-12f4-43dd-9cf6-2f1a83b0e18c")

// Identity derives the store identifier for (kind, objectID).
// Deterministic and content-independent: the same pair always resolves to
// the same stored record, regardless of titles, timestamps, or store state.
func Identity(kind Kind, objectID string) string {
	return uuid.NewSHA1(identityNamespace, []byte(string(kind)+":"+objectID)).String()
}
