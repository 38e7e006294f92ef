package domain

import "time"

// RawItem is a single retrieved artifact: a feed entry, a page fragment,
// or a rendered screenshot. It lives only for the duration of one run.
type RawItem struct {
	Source    string
	FetchedAt time.Time
	Text      string
	Binary    []byte
	MIME      string
}

// IsBinary reports whether the payload is a non-text artifact (screenshot).
func (r RawItem) IsBinary() bool {
	return len(r.Binary) > 0
}

// Image is a binary attachment forwarded to a multimodal summarization call.
type Image struct {
	Source string
	MIME   string
	Data   []byte
}

// ProcessedText is the normalized output of the Transformer for one run.
type ProcessedText struct {
	Sources []string
	Body    string
	Images  []Image
}

// Digest is the final human-readable message owned by the Notifier for one send.
type Digest struct {
	RunID       string
	Subject     string
	Body        string
	Recipient   string
	GeneratedAt time.Time
}
