package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the cache key for a natural-language query and
// its classification category. Normalization is case-insensitive and
// collapses all whitespace, so "Top  Products" and "top products"
// share a key. The generated SQL never participates: two phrasings
// that normalize alike must hit the same entry even if generation
// would produce different SQL.
func Fingerprint(query, category string) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(query), " "))
	sum := md5.Sum([]byte(normalized + "|" + category))
	return hex.EncodeToString(sum[:])
}
