package mail

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"coldreach/models"
)

var (
	inlineImagePattern = regexp.MustCompile(`<img[^>]+src="data:image/([^;]+);base64,([^"]+)"[^>]*>`)
	dataURIPattern     = regexp.MustCompile(`src="data:image/[^;]+;base64,[^"]+"`)
)

// ExtractInlineImages scans an HTML body for images embedded as base64 data
// URIs, in document order, and converts each to an attachment with a content
// identifier. The tag's src attribute is rewritten to cid:<identifier>; every
// other attribute and all surrounding markup are left untouched. The counter
// is 1-based and scoped to this call.
//
// HTML with no inline images is returned unchanged with a nil attachment
// list. The transform is purely textual, with no DOM involved.
func ExtractInlineImages(html, cidDomain string) (string, []models.Attachment) {
	matches := inlineImagePattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return html, nil
	}

	out := html
	var attachments []models.Attachment
	for _, m := range matches {
		fullTag, subtype, payload := m[0], m[1], m[2]

		content, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Browsers occasionally emit unpadded payloads.
			content, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				continue
			}
		}

		n := len(attachments) + 1
		cid := fmt.Sprintf("embedded-image-%d@%s", n, cidDomain)
		attachments = append(attachments, models.Attachment{
			Filename:    fmt.Sprintf("embedded-image-%d.%s", n, subtype),
			ContentType: "image/" + subtype,
			Content:     content,
			ContentID:   cid,
		})

		newTag := dataURIPattern.ReplaceAllLiteralString(fullTag, `src="cid:`+cid+`"`)
		out = strings.Replace(out, fullTag, newTag, 1)
	}

	return out, attachments
}
