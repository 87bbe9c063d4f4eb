package meals

import (
	"strings"

	"github.com/google/uuid"
)

var mealIDNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("mealcycle.meal"))

// NormalizeName lowercases and collapses whitespace so cosmetic edits keep the same identity.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DeriveMealID returns a stable identity for a meal name.
func DeriveMealID(name string) string {
	return uuid.NewSHA1(mealIDNamespace, []byte(NormalizeName(name))).String()
}
