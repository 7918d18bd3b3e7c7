package mail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInlineImagesNoImages(t *testing.T) {
	html := `<p>Hello</p><img src="https://example.com/logo.png">`

	out, attachments := ExtractInlineImages(html, "example.com")
	assert.Equal(t, html, out, "bodies without data URIs pass through untouched")
	assert.Nil(t, attachments)
}

func TestExtractInlineImagesSingle(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(payload)
	html := `<p>Before</p><img alt="chart" src="data:image/png;base64,` + encoded + `" width="80"><p>After</p>`

	out, attachments := ExtractInlineImages(html, "example.com")

	require.Len(t, attachments, 1)
	att := attachments[0]
	assert.Equal(t, "embedded-image-1.png", att.Filename)
	assert.Equal(t, "image/png", att.ContentType)
	assert.Equal(t, "embedded-image-1@example.com", att.ContentID)
	assert.Equal(t, payload, att.Content)

	// Only the src attribute changes; alt, width and surrounding markup stay.
	assert.Contains(t, out, `<img alt="chart" src="cid:embedded-image-1@example.com" width="80">`)
	assert.Contains(t, out, "<p>Before</p>")
	assert.Contains(t, out, "<p>After</p>")
	assert.NotContains(t, out, "base64")
}

func TestExtractInlineImagesMultipleInDocumentOrder(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	jpeg := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	html := `<img src="data:image/png;base64,` + png + `"><img src="data:image/jpeg;base64,` + jpeg + `">`

	out, attachments := ExtractInlineImages(html, "example.com")

	require.Len(t, attachments, 2)
	assert.Equal(t, "embedded-image-1.png", attachments[0].Filename)
	assert.Equal(t, "embedded-image-2.jpeg", attachments[1].Filename)
	assert.Contains(t, out, "cid:embedded-image-1@example.com")
	assert.Contains(t, out, "cid:embedded-image-2@example.com")
}

func TestExtractInlineImagesUnpaddedBase64(t *testing.T) {
	// "ab" encodes to "YWI=" padded; strip the padding.
	html := `<img src="data:image/gif;base64,YWI">`

	_, attachments := ExtractInlineImages(html, "example.com")
	require.Len(t, attachments, 1)
	assert.Equal(t, []byte("ab"), attachments[0].Content)
}

func TestExtractInlineImagesSkipsUndecodable(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte("good"))
	html := `<img src="data:image/png;base64,!!!not-base64!!!"><img src="data:image/png;base64,` + good + `">`

	out, attachments := ExtractInlineImages(html, "example.com")

	// The broken tag is left alone and does not consume a counter value.
	require.Len(t, attachments, 1)
	assert.Equal(t, "embedded-image-1.png", attachments[0].Filename)
	assert.Contains(t, out, "!!!not-base64!!!")
}
