// Package render assembles a bag's display document and metadata envelope.
// Rendering is pure: the same traits always produce the same bytes.
package render

import (
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"loot/internal/bag/models"
	"loot/pkg/domain"
)

// Description is the static text embedded in every envelope.
const Description = "Loot is randomized adventurer gear generated and stored on chain. " +
	"Stats, images, and other functionality are intentionally omitted for others to interpret. " +
	"Feel free to use Loot in any way you want."

const (
	jsonPrefix  = "data:application/json;base64,"
	imagePrefix = "data:image/svg+xml;base64,"

	svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="xMinYMin meet" viewBox="0 0 350 350">` +
		`<style>.base { fill: white; font-family: serif; font-size: 14px; }</style>` +
		`<rect width="100%" height="100%" fill="black" />`
	svgClose = `</svg>`

	lineX      = 10
	firstLineY = 20
	lineStep   = 20
)

// Metadata is the JSON object carried by a token URI.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Document renders one text line per trait, top to bottom in display order.
func Document(traits models.Traits) string {
	var b strings.Builder
	b.WriteString(svgOpen)
	for i, tr := range traits {
		b.WriteString(`<text x="`)
		b.WriteString(strconv.Itoa(lineX))
		b.WriteString(`" y="`)
		b.WriteString(strconv.Itoa(firstLineY + i*lineStep))
		b.WriteString(`" class="base">`)
		_ = xml.EscapeText(&b, []byte(tr.Value))
		b.WriteString(`</text>`)
	}
	b.WriteString(svgClose)
	return b.String()
}

// Envelope wraps an SVG document in the base64 JSON data URI.
func Envelope(id domain.TokenID, svg string) (string, error) {
	body, err := json.Marshal(Metadata{
		Name:        "Bag #" + id.String(),
		Description: Description,
		Image:       imagePrefix + base64.StdEncoding.EncodeToString([]byte(svg)),
	})
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return jsonPrefix + base64.StdEncoding.EncodeToString(body), nil
}

// TokenURI renders traits and wraps them for id.
func TokenURI(id domain.TokenID, traits models.Traits) (string, error) {
	return Envelope(id, Document(traits))
}

// Decode reverses Envelope, returning the metadata and the decoded SVG.
func Decode(uri string) (Metadata, string, error) {
	raw, ok := strings.CutPrefix(uri, jsonPrefix)
	if !ok {
		return Metadata{}, "", fmt.Errorf("token URI: missing %q prefix", jsonPrefix)
	}
	body, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Metadata{}, "", fmt.Errorf("token URI: %w", err)
	}
	var md Metadata
	if err := json.Unmarshal(body, &md); err != nil {
		return Metadata{}, "", fmt.Errorf("token URI metadata: %w", err)
	}
	img, ok := strings.CutPrefix(md.Image, imagePrefix)
	if !ok {
		return Metadata{}, "", fmt.Errorf("token URI image: missing %q prefix", imagePrefix)
	}
	svg, err := base64.StdEncoding.DecodeString(img)
	if err != nil {
		return Metadata{}, "", fmt.Errorf("token URI image: %w", err)
	}
	return md, string(svg), nil
}
