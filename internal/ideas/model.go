// Package ideas reads a channel's uploaded ideas.csv: a sequential queue of
// card content consumed row by row across runs.
package ideas

// Idea is one CSV row of card content.
type Idea struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
	Source   string `json:"source"`
}
