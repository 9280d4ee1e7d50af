package domain

import "time"

// Step types cycled by generators, in order.
var StepTypes = []string{"setup", "action", "configuration", "verification", "completion"}

// Step is one instruction bound to a point in the video.
type Step struct {
	Number     int           // 1-based ordinal, contiguous within a job
	Timestamp  string        // MM:SS offset into the video
	Text       string
	Screenshot string        // illustrative image URI
	Thumbnail  string
	Color      string        // hex color without '#'
	Type       string        // free-form category tag, e.g. "action"
	Duration   time.Duration // advisory only
}
