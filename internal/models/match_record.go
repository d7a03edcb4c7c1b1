package models

// ByteOffset is a half-open, 0-based byte range.
type ByteOffset struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Position is a 0-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range locates a match inside its file.
type Range struct {
	ByteOffset ByteOffset `json:"byteOffset"`
	Start      Position   `json:"start"`
	End        Position   `json:"end"`
}

// CharCount holds the number of characters on the excerpt lines before and
// after the matched text.
type CharCount struct {
	Leading  int64 `json:"leading"`
	Trailing int64 `json:"trailing"`
}

// MatchRecord is a single hit reported by the structural-search engine.
type MatchRecord struct {
	Text        string    `json:"text"`
	Range       Range     `json:"range"`
	File        string    `json:"file"`
	Lines       string    `json:"lines"`
	CharCount   CharCount `json:"charCount"`
	Replacement *string   `json:"replacement"`
	Language    string    `json:"language"`
}

// HasReplacement reports whether the engine proposed a rewrite for this match.
func (m MatchRecord) HasReplacement() bool {
	return m.Replacement != nil
}
