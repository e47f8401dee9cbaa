package widget

import (
	"encoding/json"
	"regexp"
	"strings"
)

// blockPattern matches a fenced widget block. The info string carries the
// widget name; the body is a JSON object (possibly empty).
var blockPattern = regexp.MustCompile("(?ms)^```widget:([A-Za-z0-9_-]+)[ \t]*\r?\n(.*?)^```[ \t]*$")

// ParsedBlock is a located widget invocation inside rendered content.
type ParsedBlock struct {
	// FullMatch is the exact text of the block, fences included.
	FullMatch string

	// Name is the widget name from the info string.
	Name string

	// Params is the decoded JSON parameter object. Nil when the body is
	// empty or malformed.
	Params map[string]any

	// ParseErr describes a malformed JSON body. A bad block is reported
	// inline rather than aborting the render.
	ParseErr string

	// Start and End are byte offsets of the block within the content.
	Start int
	End   int
}

// ParseBlocks scans content for widget blocks, returned in document order.
// JSON parameter payloads are parsed eagerly; malformed JSON is captured in
// ParseErr rather than returned as an error.
func ParseBlocks(content string) []ParsedBlock {
	matches := blockPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]ParsedBlock, 0, len(matches))
	for _, m := range matches {
		block := ParsedBlock{
			FullMatch: content[m[0]:m[1]],
			Name:      content[m[2]:m[3]],
			Start:     m[0],
			End:       m[1],
		}
		body := strings.TrimSpace(content[m[4]:m[5]])
		if body != "" {
			var params map[string]any
			if err := json.Unmarshal([]byte(body), &params); err != nil {
				block.ParseErr = err.Error()
			} else {
				block.Params = params
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}
