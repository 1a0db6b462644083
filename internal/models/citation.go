package models

// Citation is a user-facing pointer from an answer back into the video.
type Citation struct {
	VideoID string   `json:"video_id"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Preview string   `json:"preview"`
	// URL is the deep link to Start; empty when Start is nil.
	URL string `json:"url,omitempty"`
	// Label is the display range, "MM:SS → MM:SS" or "no timestamp".
	Label string `json:"label"`
}

// HasTimestamp reports whether the citation can link into the video.
func (c *Citation) HasTimestamp() bool {
	return c.Start != nil
}
