package render

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loot/internal/bag/models"
)

func sampleTraits() models.Traits {
	values := []string{
		`"Dread Bite" Maul of Perfection +1`, "Ring Mail", "Dragon's Crown", "Sash",
		"Wool Shoes", "Demon's Hands", "Pendant", "Gold Ring",
	}
	out := make(models.Traits, len(values))
	for i, v := range values {
		out[i] = models.Trait{Category: models.Categories[i], Value: v}
	}
	return out
}

func TestDocument_Layout(t *testing.T) {
	svg := Document(sampleTraits())

	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`))
	assert.True(t, strings.HasSuffix(svg, `</svg>`))
	assert.Contains(t, svg, `viewBox="0 0 350 350"`)
	for _, y := range []string{"20", "40", "60", "80", "100", "120", "140", "160"} {
		assert.Contains(t, svg, `<text x="10" y="`+y+`" class="base">`)
	}
	assert.Equal(t, 8, strings.Count(svg, "<text "))
	assert.Contains(t, svg, `<text x="10" y="20" class="base">&#34;Dread Bite&#34; Maul of Perfection +1</text>`)
	assert.Contains(t, svg, `Dragon&#39;s Crown`)
}

func TestDocument_IsWellFormedXML(t *testing.T) {
	dec := xml.NewDecoder(strings.NewReader(Document(sampleTraits())))
	var texts []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok && len(strings.TrimSpace(string(cd))) > 0 {
			texts = append(texts, string(cd))
		}
	}
	require.Len(t, texts, 9) // style body plus eight lines
	assert.Equal(t, sampleTraits().Values(), texts[1:])
}

func TestTokenURI_RoundTrip(t *testing.T) {
	uri, err := TokenURI(5, sampleTraits())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:application/json;base64,"))

	md, svg, err := Decode(uri)
	require.NoError(t, err)
	assert.Equal(t, "Bag #5", md.Name)
	assert.Equal(t, Description, md.Description)
	assert.True(t, strings.HasPrefix(md.Image, "data:image/svg+xml;base64,"))
	assert.Equal(t, Document(sampleTraits()), svg)
}

func TestTokenURI_Deterministic(t *testing.T) {
	a, err := TokenURI(7778, sampleTraits())
	require.NoError(t, err)
	b, err := TokenURI(7778, sampleTraits())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecode_Rejects(t *testing.T) {
	_, _, err := Decode("https://example.com/1.json")
	assert.Error(t, err)

	_, _, err = Decode("data:application/json;base64,!!!")
	assert.Error(t, err)
}
