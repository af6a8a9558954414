package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyRoundTrip(t *testing.T) {
	key := Key{
		Kind:      "twitterTextWithImage",
		PageID:    "page-42",
		PostID:    "V1StGXR8_Z5jdHi6B-myT",
		PageToken: "EAABsbCS1iHgBO7token",
	}

	parsed, err := ParseKey(key.Encode())
	assert.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestKeyRoundTripTokenWithDelimiters(t *testing.T) {
	// Twitter credentials are "token@secret" and provider tokens may carry
	// ':' themselves; the token is the last field so every remaining byte
	// belongs to it.
	key := Key{
		Kind:      "twitterVideoPage",
		PageID:    "page-1",
		PostID:    "post-1",
		PageToken: "abc123@s3cr3t:with:colons",
	}

	parsed, err := ParseKey(key.Encode())
	assert.NoError(t, err)
	assert.Equal(t, "abc123@s3cr3t:with:colons", parsed.PageToken)
	assert.Equal(t, key, parsed)
}

func TestParseKeyMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"text",
		"text:page",
		"text:page:post",
		"text:page:post:",
		"text::post:token",
	} {
		_, err := ParseKey(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestValidateRejectsDelimiterInFixedFields(t *testing.T) {
	key := Key{Kind: "text", PageID: "pa:ge", PostID: "post", PageToken: "token"}
	assert.Error(t, key.Validate())
}

func TestPostPattern(t *testing.T) {
	assert.Equal(t, "page-1:post-9", PostPattern("page-1", "post-9"))
}
