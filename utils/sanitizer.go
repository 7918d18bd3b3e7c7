package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	// StrictPolicy removes all markup
	StrictPolicy *bluemonday.Policy
	// BodyPolicy keeps the rich-text subset the composer produces
	BodyPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	BodyPolicy = bluemonday.UGCPolicy()

	// Elements the composer's editable body can emit
	BodyPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3")
	BodyPolicy.AllowElements("strong", "em", "u", "s")
	BodyPolicy.AllowElements("ul", "ol", "li", "blockquote")
	BodyPolicy.AllowElements("a", "img")

	BodyPolicy.AllowAttrs("href").OnElements("a")
	BodyPolicy.AllowAttrs("src", "alt", "title", "width", "height", "style").OnElements("img")
	BodyPolicy.AllowAttrs("style").OnElements("span", "div", "p")

	BodyPolicy.AllowURLSchemes("http", "https", "mailto", "data", "cid")
}

// StripHTML removes all HTML tags from content
func StripHTML(content string) string {
	return StrictPolicy.Sanitize(content)
}

// HTMLToText derives the plain-text alternative of an HTML email body:
// block-level breaks become newlines, tags are stripped, entities decoded.
func HTMLToText(body string) string {
	breaks := strings.NewReplacer(
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</p>", "\n", "</div>", "\n", "</li>", "\n",
	)
	text := StrictPolicy.Sanitize(breaks.Replace(body))
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// SanitizeField cleans a free-text prospect field from an uploaded file.
func SanitizeField(value string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(value))
}
