package render

import "bytes"

// sanitizeSVG rewrites colour declarations oksvg fails to parse: bare hex
// without '#' and a space after the property colon.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill:000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: 000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: 000000"), []byte("stroke:#000000"))
	for _, prop := range []string{"fill", "stroke", "stop-color"} {
		fixed = bytes.ReplaceAll(fixed, []byte(prop+": #"), []byte(prop+":#"))
	}
	return fixed
}
