package schedule

import (
	"fmt"
	"strings"
)

// Key is the composite timer identifier stored in redis for a deferred
// dispatch. Its string form, "{kind}:{pageId}:{postId}:{pageToken}", is both
// the expiring key and the only payload the expiry event carries, so it must
// round-trip exactly. Kind, PageID and PostID must not contain ':'; the token
// is the final field and absorbs any remaining ':' bytes. Twitter's composite
// "token@secret" credentials are safe because '@' is not the delimiter.
type Key struct {
	Kind      string
	PageID    string
	PostID    string
	PageToken string
}

const keyFields = 4

func (k Key) Encode() string {
	return strings.Join([]string{k.Kind, k.PageID, k.PostID, k.PageToken}, ":")
}

func (k Key) Validate() error {
	if k.Kind == "" || k.PageID == "" || k.PostID == "" || k.PageToken == "" {
		return fmt.Errorf("schedule key has empty fields: %q", k.Encode())
	}
	for _, field := range []string{k.Kind, k.PageID, k.PostID} {
		if strings.Contains(field, ":") {
			return fmt.Errorf("schedule key field %q contains delimiter", field)
		}
	}
	return nil
}

func ParseKey(raw string) (Key, error) {
	parts := strings.SplitN(raw, ":", keyFields)
	if len(parts) != keyFields {
		return Key{}, fmt.Errorf("malformed schedule key %q: want %d colon-delimited fields", raw, keyFields)
	}

	k := Key{
		Kind:      parts[0],
		PageID:    parts[1],
		PostID:    parts[2],
		PageToken: parts[3],
	}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// PostPattern is the substring matched when clearing every timer that
// references a post, regardless of kind or token.
func PostPattern(pageID, postID string) string {
	return pageID + ":" + postID
}
