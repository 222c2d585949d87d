// Package pluck derives bag traits from a credential.
//
// Derivation is a pure function of (credential, category, tables): the same
// inputs always produce byte-identical output, so anyone holding a bag's
// credential can recompute its traits without consulting the service.
//
// A single derived integer, rand, drives every lookup for one category:
//
//	base       = table[rand mod len(table)]
//	tier       = rand mod 21
//	tier > 14  -> base + " " + suffixes[rand mod len(suffixes)]
//	tier >= 19 -> "\"prefix nameSuffix\" " + decorated
//	tier == 20 -> ... + " +1"
//
// The lookups are correlated because they share rand. Historical bags depend
// on that coupling, so it is kept.
package pluck

import (
	"crypto/sha256"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"loot/internal/bag/traits"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
)

// Scheme selects how rand is computed from a credential and a salt.
type Scheme string

const (
	// SchemeSHA256 hashes salt ++ decimal(credential) with SHA-256.
	SchemeSHA256 Scheme = "sha256"
	// SchemeKeccak256 hashes the same input with legacy Keccak-256.
	SchemeKeccak256 Scheme = "keccak256"
	// SchemeXOR uses credential XOR salt, the salt's ASCII bytes read as a
	// big-endian integer.
	SchemeXOR Scheme = "xor"
)

// Rarity tier boundaries.
const (
	Tiers          = 21
	SuffixTier     = 15
	NameAffixTier  = 19
	GreatestTier   = 20
	greatestMarker = " +1"
)

var tierModulus = big.NewInt(Tiers)

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeSHA256, SchemeKeccak256, SchemeXOR:
		return Scheme(s), nil
	case "":
		return SchemeSHA256, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown pluck scheme: "+s)
	}
}

// Rand computes the derivation integer for one credential and salt.
// Digests are read as big-endian unsigned integers.
func Rand(scheme Scheme, credential domain.Credential, salt string) *big.Int {
	switch scheme {
	case SchemeXOR:
		s := new(big.Int).SetBytes([]byte(salt))
		return s.Xor(s, credential.Big())
	case SchemeKeccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(salt + credential.String()))
		return new(big.Int).SetBytes(h.Sum(nil))
	default:
		sum := sha256.Sum256([]byte(salt + credential.String()))
		return new(big.Int).SetBytes(sum[:])
	}
}

// Tier returns rand mod 21.
func Tier(rand *big.Int) int {
	return int(new(big.Int).Mod(rand, tierModulus).Int64())
}

// pick returns list[rand mod len(list)].
func pick(rand *big.Int, list []string) string {
	idx := new(big.Int).Mod(rand, big.NewInt(int64(len(list))))
	return list[idx.Int64()]
}

// DeriveTrait applies base selection and tier decoration to an already
// computed rand. base and every table in t must be non-empty.
func DeriveTrait(rand *big.Int, base []string, t *traits.Tables) string {
	output := pick(rand, base)

	tier := Tier(rand)
	if tier < SuffixTier {
		return output
	}
	output += " " + pick(rand, t.Suffixes)
	if tier < NameAffixTier {
		return output
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(pick(rand, t.NamePrefixes))
	b.WriteByte(' ')
	b.WriteString(pick(rand, t.NameSuffixes))
	b.WriteString("\" ")
	b.WriteString(output)
	if tier == GreatestTier {
		b.WriteString(greatestMarker)
	}
	return b.String()
}
