package dispatch

import "github.com/postrelay/postrelay/internal/models"

// Shape classifies the content a kind carries, independent of channel.
type Shape string

const (
	ShapeText       Shape = "text"
	ShapeImage      Shape = "image"
	ShapeCarousel   Shape = "carousel"
	ShapeVideo      Shape = "video"
	ShapeReel       Shape = "reel"
	ShapeStoryImage Shape = "storyImage"
	ShapeStoryVideo Shape = "storyVideo"
)

// Post kinds, one per (channel, shape) pair. The strings are wire format:
// they prefix every schedule key and are persisted on the post row, so they
// must match any existing deployment exactly.
const (
	KindText                  = "text"
	KindTextWithImage         = "textWithImage"
	KindTextWithMultipleImage = "textWithMultipleImage"
	KindVideoFBPage           = "videoFBPage"
	KindReelToPage            = "reelToPage"
	KindStoryVideoToPage      = "storyVideoToPage"
	KindStoryImageToPage      = "storyImageToPage"

	KindInstaTextWithImage         = "instaTextWithImage"
	KindInstaTextWithMultipleImage = "instaTextWithMultipleImage"
	KindInstaVideoFBPage           = "instaVideoFBPage"
	KindInstaStoryImageToPage      = "instaStoryImageToPage"
	KindInstaStoryVideoToPage      = "instaStoryVideoToPage"

	KindTwitterText                  = "twitterText"
	KindTwitterTextWithImage         = "twitterTextWithImage"
	KindTwitterTextWithMultipleImage = "twitterTextWithMultipleImage"
	KindTwitterVideoPage             = "twitterVideoPage"

	KindLinkedinText                  = "linkedinText"
	KindLinkedinTextWithImage         = "linkedinTextWithImage"
	KindLinkedinTextWithMultipleImage = "linkedinTextWithMultipleImage"
	KindLinkedinVideoPage             = "linkedinVideoPage"
)

type route struct {
	Channel string
	Shape   Shape
}

var routes = map[string]route{
	KindText:                  {models.ChannelFacebook, ShapeText},
	KindTextWithImage:         {models.ChannelFacebook, ShapeImage},
	KindTextWithMultipleImage: {models.ChannelFacebook, ShapeCarousel},
	KindVideoFBPage:           {models.ChannelFacebook, ShapeVideo},
	KindReelToPage:            {models.ChannelFacebook, ShapeReel},
	KindStoryVideoToPage:      {models.ChannelFacebook, ShapeStoryVideo},
	KindStoryImageToPage:      {models.ChannelFacebook, ShapeStoryImage},

	KindInstaTextWithImage:         {models.ChannelInstagram, ShapeImage},
	KindInstaTextWithMultipleImage: {models.ChannelInstagram, ShapeCarousel},
	KindInstaVideoFBPage:           {models.ChannelInstagram, ShapeVideo},
	KindInstaStoryImageToPage:      {models.ChannelInstagram, ShapeStoryImage},
	KindInstaStoryVideoToPage:      {models.ChannelInstagram, ShapeStoryVideo},

	KindTwitterText:                  {models.ChannelTwitter, ShapeText},
	KindTwitterTextWithImage:         {models.ChannelTwitter, ShapeImage},
	KindTwitterTextWithMultipleImage: {models.ChannelTwitter, ShapeCarousel},
	KindTwitterVideoPage:             {models.ChannelTwitter, ShapeVideo},

	KindLinkedinText:                  {models.ChannelLinkedin, ShapeText},
	KindLinkedinTextWithImage:         {models.ChannelLinkedin, ShapeImage},
	KindLinkedinTextWithMultipleImage: {models.ChannelLinkedin, ShapeCarousel},
	KindLinkedinVideoPage:             {models.ChannelLinkedin, ShapeVideo},
}

// KnownKind reports whether kind routes to a channel adapter.
func KnownKind(kind string) bool {
	_, ok := routes[kind]
	return ok
}

// ChannelForKind returns the channel a kind publishes to.
func ChannelForKind(kind string) (string, bool) {
	r, ok := routes[kind]
	return r.Channel, ok
}

// ContentFromPost extracts the channel-neutral payload that kind requires
// from a post record: the message text plus the first or all media URLs.
// Missing required media is a configuration error, not an adapter call.
func ContentFromPost(kind string, post *models.Post) (Content, error) {
	r, ok := routes[kind]
	if !ok {
		return Content{}, configErrorf("unknown post kind %q", kind)
	}

	content := Content{Shape: r.Shape, Message: post.Text}

	switch r.Shape {
	case ShapeText:
	case ShapeImage, ShapeStoryImage:
		if len(post.ImageURLs) == 0 {
			return Content{}, configErrorf("post %s kind %s has no image url", post.ID, kind)
		}
		content.ImageURLs = post.ImageURLs[:1]
	case ShapeCarousel:
		if len(post.ImageURLs) == 0 {
			return Content{}, configErrorf("post %s kind %s has no image urls", post.ID, kind)
		}
		content.ImageURLs = post.ImageURLs
	case ShapeVideo, ShapeReel, ShapeStoryVideo:
		if len(post.VideoURLs) == 0 {
			return Content{}, configErrorf("post %s kind %s has no video url", post.ID, kind)
		}
		content.VideoURLs = post.VideoURLs[:1]
	}
	return content, nil
}
