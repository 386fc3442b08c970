package extract

import "strings"

// Result is a simplified representation of a page's Open Graph metadata.
// A value is the empty string when the corresponding tag was not found.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

const (
	markerTitle       = "og:title"
	markerDescription = "og:description"
	markerImage       = "og:image"

	contentAttr = `content="`
)

// Tags scans a text buffer line by line for the three Open Graph markers and
// returns the content attribute that follows each. When the same marker
// appears on multiple lines the last match wins. The function is pure; the
// same buffer always yields the same result.
func Tags(buf string) Result {
	var res Result
	for _, line := range strings.Split(buf, "\n") {
		if v, ok := tagContent(line, markerTitle); ok {
			res.Title = v
		}
		if v, ok := tagContent(line, markerDescription); ok {
			res.Description = v
		}
		if v, ok := tagContent(line, markerImage); ok {
			res.Image = v
		}
	}
	return res
}

// tagContent extracts the value of the first content="..." after the marker.
// Every lookup is bounded: a line that carries the marker but no complete
// content attribute counts as no match rather than aborting the scan.
func tagContent(line, marker string) (string, bool) {
	i := strings.Index(line, marker)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(marker):]
	j := strings.Index(rest, contentAttr)
	if j < 0 {
		return "", false
	}
	rest = rest[j+len(contentAttr):]
	k := strings.IndexByte(rest, '"')
	if k < 0 {
		return "", false
	}
	return rest[:k], true
}
