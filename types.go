package epubquery

// Chapter is one content document extracted to plain text.
// Chapters are value records: once produced they are never mutated.
type Chapter struct {
	// Title is derived from the first heading (h1, h2, h3) or the
	// document <title>. It is never empty: when no usable heading
	// exists it falls back to the base name of FileName.
	Title string

	// Content is the plain-text rendering of the document. Each
	// block-level element becomes one whitespace-normalized line;
	// lines are separated by a single newline.
	Content string

	// FileName is the ZIP-internal path of the content document.
	// It is unique within a book and stable across calls.
	FileName string

	// OrderIndex is the 0-based position in reading order.
	// Indexes are contiguous and follow the spine exactly.
	OrderIndex int
}

// Metadata holds the document-level descriptive fields from the OPF.
// A nil field means the OPF omits the element entirely; a pointer to
// an empty string means the element is present but empty.
type Metadata struct {
	// Title is the first dc:title value.
	Title *string

	// Author is the first dc:creator value.
	Author *string

	// Language is the first dc:language value.
	Language *string

	// Identifier is the first dc:identifier value (ISBN, UUID, URI).
	Identifier *string
}

// SearchResult is one match occurrence within a chapter.
type SearchResult struct {
	// ChapterTitle and FileName identify the owning chapter.
	ChapterTitle string
	FileName     string

	// MatchedText is the exact matched substring. When the pattern
	// defines a capturing group and group 1 participates in the match,
	// the group's text is used instead of the whole match.
	MatchedText string

	// Context is a window of contiguous content lines around the
	// matched line, joined by newlines, in original order.
	Context string

	// LineNumber is the 1-based line index of the match within the
	// chapter's Content.
	LineNumber int
}

// WordCountReport aggregates whitespace-delimited token counts.
type WordCountReport struct {
	// Total is the sum of word counts across all chapters.
	Total int

	// ByChapter lists per-chapter counts in reading order.
	ByChapter []ChapterWordCount
}

// ChapterWordCount is one chapter's entry in a WordCountReport.
type ChapterWordCount struct {
	Title string
	Words int
}

// spineItem is a resolved entry of the OPF <spine> element.
type spineItem struct {
	// ID is the manifest item id referenced by this spine entry.
	ID string

	// Href is the content file path within the ePub archive,
	// resolved relative to the OPF location.
	Href string

	// MediaType is the MIME type of the referenced content file.
	MediaType string

	// Linear reports whether the OPF marks this entry linear
	// (anything other than linear="no").
	Linear bool
}
