package domain

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "loot/pkg/domain-errors"
)

func TestParseTokenID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseTokenID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidIdentifier))
	})

	t.Run("rejects non-decimal input", func(t *testing.T) {
		for _, in := range []string{"abc", "-1", "1.5", "0x10"} {
			_, err := ParseTokenID(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidIdentifier), in)
		}
	})

	t.Run("round trips decimal form", func(t *testing.T) {
		id, err := ParseTokenID("7778")
		require.NoError(t, err)
		assert.Equal(t, TokenID(7778), id)
		assert.Equal(t, "7778", id.String())
	})
}

func TestParseAddress(t *testing.T) {
	const hexAddr = "d2a4cff31913016155e38e474a2c06d08be276cf"

	t.Run("accepts prefixed and bare forms", func(t *testing.T) {
		a, err := ParseAddress("0x" + hexAddr)
		require.NoError(t, err)
		b, err := ParseAddress(strings.ToUpper(hexAddr))
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, "0x"+hexAddr, a.String())
		assert.False(t, a.IsZero())
	})

	t.Run("rejects wrong length and bad hex", func(t *testing.T) {
		for _, in := range []string{"", "0x", "0x1234", "zz" + hexAddr[2:]} {
			_, err := ParseAddress(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("text marshalling", func(t *testing.T) {
		a, err := ParseAddress(hexAddr)
		require.NoError(t, err)
		raw, err := json.Marshal(a)
		require.NoError(t, err)
		assert.JSONEq(t, `"0x`+hexAddr+`"`, string(raw))

		var decoded Address
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, a, decoded)
	})
}

func TestCredential(t *testing.T) {
	t.Run("zero value reads as zero", func(t *testing.T) {
		var c Credential
		assert.True(t, c.IsZero())
		assert.Equal(t, "0", c.String())
		assert.Equal(t, 0, c.Big().Sign())
	})

	t.Run("rejects negative and oversized values", func(t *testing.T) {
		_, err := NewCredential(big.NewInt(-1))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		tooBig := new(big.Int).Lsh(big.NewInt(1), CredentialBits)
		_, err = NewCredential(tooBig)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = NewCredential(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("is not aliased to the caller's big.Int", func(t *testing.T) {
		n := big.NewInt(42)
		c, err := NewCredential(n)
		require.NoError(t, err)
		n.SetInt64(7)
		c.Big().SetInt64(9)
		assert.Equal(t, "42", c.String())
	})

	t.Run("decimal parsing keeps full precision", func(t *testing.T) {
		largest := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), CredentialBits), big.NewInt(1))
		c, err := ParseCredential(largest.String())
		require.NoError(t, err)
		assert.Equal(t, largest.String(), c.String())
		assert.True(t, c.Equal(Credential{n: largest}))

		_, err = ParseCredential("12ab")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("json uses decimal strings", func(t *testing.T) {
		raw, err := json.Marshal(struct {
			C Credential `json:"c"`
		}{C: CredentialFromUint64(42)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"c":"42"}`, string(raw))
	})
}
