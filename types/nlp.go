package types

// Sentiment is the document tone: Score from -1 (negative) to 1, Magnitude
// from 0 upward.
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// Entity is a named thing found in a report description. Type is the
// language API entity kind, e.g. LOCATION or ADDRESS.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
