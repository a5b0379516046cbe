package model

// Segment is a time-bounded span of transcribed text. Times are seconds from the start of the audio.
type Segment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Envelope is the document the bridge writes to its output path.
// Segments must never be nil so it always encodes as a JSON array.
type Envelope struct {
	Error    string    `json:"error,omitempty"`
	Segments []Segment `json:"segments"`
}

// HasError reports whether the envelope carries an error message.
func (e *Envelope) HasError() bool {
	return e != nil && e.Error != ""
}
