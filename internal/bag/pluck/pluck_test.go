package pluck

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"loot/internal/bag/models"
	"loot/internal/bag/traits"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
)

func TestDeriveTrait_TierDecoration(t *testing.T) {
	tables := traits.Default()

	tests := []struct {
		name string
		rand int64
		want string
	}{
		{name: "tier 0 is the bare base trait", rand: 42, want: "Falchion"},
		{name: "tier 14 stays undecorated", rand: 14, want: "Grimoire"},
		{name: "tier 15 adds a suffix", rand: 15, want: "Chronicle of the Twins"},
		{name: "tier 19 adds the name affix", rand: 19, want: `"Dragon Root" Quarterstaff of Skill`},
		{name: "tier 20 adds the +1 marker", rand: 20, want: `"Dread Bite" Maul of Perfection +1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTrait(big.NewInt(tt.rand), tables.Weapons, tables)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveTrait_CredentialFortyTwo(t *testing.T) {
	tables := traits.Default()
	rand := big.NewInt(42)

	got := DeriveTrait(rand, tables.Weapons, tables)

	assert.Equal(t, tables.Weapons[42%len(tables.Weapons)], got)
	assert.Equal(t, 0, Tier(rand))
}

func TestDeriveTrait_ThresholdsAcrossAllTiers(t *testing.T) {
	tables := traits.Default()
	for r := int64(0); r < 21*18; r++ {
		rand := big.NewInt(r)
		tier := Tier(rand)
		out := DeriveTrait(rand, tables.Weapons, tables)

		hasSuffix := false
		for _, s := range tables.Suffixes {
			if strings.Contains(out, s) {
				hasSuffix = true
				break
			}
		}
		assert.Equal(t, tier > 14, hasSuffix, "suffix at rand %d", r)
		assert.Equal(t, tier >= 19, out[0] == '"', "name affix at rand %d", r)
		assert.Equal(t, tier == 20, strings.HasSuffix(out, " +1"), "marker at rand %d", r)
	}
}

func TestDeriveTrait_LargeRand(t *testing.T) {
	tables := traits.Default()
	// 2^256 - 1 exceeds every machine word; selection must use big modulus.
	rand := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	expectedBase := tables.Weapons[new(big.Int).Mod(rand, big.NewInt(18)).Int64()]

	out := DeriveTrait(rand, tables.Weapons, tables)
	assert.Contains(t, out, expectedBase)
}

func TestRand_Schemes(t *testing.T) {
	cred := domain.CredentialFromUint64(42)

	t.Run("sha256 reads the digest big-endian", func(t *testing.T) {
		got := Rand(SchemeSHA256, cred, "WEAPON")
		assert.Equal(t, 18, Tier(got))
	})

	t.Run("keccak256 hashes salt and decimal credential", func(t *testing.T) {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte("WEAPON42"))
		want := new(big.Int).SetBytes(h.Sum(nil))

		assert.Equal(t, 0, want.Cmp(Rand(SchemeKeccak256, cred, "WEAPON")))
		assert.NotEqual(t, 0, want.Cmp(Rand(SchemeSHA256, cred, "WEAPON")))
	})

	t.Run("xor mixes the salt bytes into the credential", func(t *testing.T) {
		salt := new(big.Int).SetBytes([]byte("WEAPON"))
		want := new(big.Int).Xor(salt, big.NewInt(42))
		assert.Equal(t, 0, want.Cmp(Rand(SchemeXOR, cred, "WEAPON")))
	})
}

func TestParseScheme(t *testing.T) {
	for _, name := range []string{"sha256", "keccak256", "xor"} {
		s, err := ParseScheme(name)
		require.NoError(t, err)
		assert.Equal(t, Scheme(name), s)
	}

	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeSHA256, s)

	_, err = ParseScheme("md5")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestDeriver_DeriveAll(t *testing.T) {
	tests := []struct {
		name       string
		scheme     Scheme
		credential uint64
		want       []string
	}{
		{
			name:       "sha256 credential 42",
			scheme:     SchemeSHA256,
			credential: 42,
			want: []string{
				"Warhammer of Power", "Ring Mail", "Full Helm", "Dragonskin Belt",
				"Wool Shoes", "Leather Gloves", "Pendant", "Titanium Ring",
			},
		},
		{
			name:       "sha256 credential 1",
			scheme:     SchemeSHA256,
			credential: 1,
			want: []string{
				"Maul", "Divine Robe", "Dragon's Crown", "Hard Leather Belt",
				`"Victory Peak" Greaves of Perfection +1`, "Demon's Hands", "Pendant", "Bronze Ring",
			},
		},
		{
			name:       "xor credential 42",
			scheme:     SchemeXOR,
			credential: 42,
			want: []string{
				"Warhammer", "Plate Mail", "Ornate Helm", "Sash",
				"Leather Boots", "Divine Gloves", "Pendant", "Bronze Ring",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(nil, tt.scheme)
			got, err := d.DeriveAll(domain.CredentialFromUint64(tt.credential))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Values())
			for i, c := range models.Categories {
				assert.Equal(t, c, got[i].Category)
			}
		})
	}
}

func TestDeriver_Deterministic(t *testing.T) {
	d := New(traits.Default(), SchemeSHA256)
	cred, err := domain.ParseCredential("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)

	for _, c := range models.Categories {
		first, err := d.Derive(cred, c)
		require.NoError(t, err)
		second, err := d.Derive(cred, c)
		require.NoError(t, err)
		assert.Equal(t, first, second, c)
	}
}

func TestDeriver_UnknownCategory(t *testing.T) {
	_, err := New(nil, "").Derive(domain.CredentialFromUint64(1), models.Category("CLOAK"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

type recordingObserver struct {
	tiers map[string]int
}

func (r *recordingObserver) ObserveDerivation(category string, tier int) {
	r.tiers[category] = tier
}

func TestDeriver_Observer(t *testing.T) {
	obs := &recordingObserver{tiers: map[string]int{}}
	d := New(nil, SchemeSHA256, WithObserver(obs))

	_, err := d.DeriveAll(domain.CredentialFromUint64(7778))
	require.NoError(t, err)

	assert.Len(t, obs.tiers, 8)
	assert.Equal(t, 15, obs.tiers["WAIST"])
	assert.Equal(t, 16, obs.tiers["FOOT"])
}
