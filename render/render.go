// Package render turns user-authored markdown into sanitized HTML for the
// content library.
package render

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var policy = bluemonday.UGCPolicy()

// Markdown renders markdown to HTML and strips anything outside the UGC
// sanitization policy.
func Markdown(text string) string {
	html := blackfriday.Run([]byte(text))
	return string(policy.SanitizeBytes(html))
}
