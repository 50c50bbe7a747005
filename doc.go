// Package epubquery extracts plain text from ePub files and answers
// queries over the extracted text: pattern search with context windows,
// chapter listing, metadata retrieval, and word-count statistics.
//
// # Opening an ePub
//
// Use [Open] to open a file by path, or [NewReader] to read from an
// [io.ReaderAt]:
//
//	book, err := epubquery.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer book.Close()
//
// Container and manifest/spine resolution happen at open time; a document
// whose structural metadata is unreadable fails immediately with
// [ErrCorruptArchive], [ErrInvalidManifest], or [ErrSpineReference].
//
// # Chapters
//
// [Book.Chapters] returns the chapters in spine order as plain-text value
// records. Extraction runs once, on first use, and is cached for the
// lifetime of the Book. Per-chapter extraction never fails: malformed
// markup or undecodable bytes degrade to best-effort text rather than
// aborting the document.
//
//	for _, ch := range book.Chapters() {
//	    fmt.Println(ch.OrderIndex, ch.Title)
//	}
//
// # Searching
//
// [Book.Search] matches a pattern against every content line of every
// chapter. Literal mode (the default) escapes the pattern; regex mode
// compiles it as RE2 and reports malformed expressions with
// [ErrInvalidPattern]. Matching is case-insensitive unless
// [SearchOptions.CaseSensitive] is set:
//
//	results, err := book.Search("whale", epubquery.SearchOptions{ContextLines: 1})
//	for _, r := range results {
//	    fmt.Printf("%s:%d %s\n", r.ChapterTitle, r.LineNumber, r.MatchedText)
//	}
//
// Results follow the natural reading order of the document: chapter order,
// then line number, then left-to-right position within the line.
//
// # Metadata
//
// [Book.Metadata] returns the Dublin Core fields title, author, language,
// and identifier. Fields are pointers: nil means the OPF omits the element,
// which is distinct from a present-but-empty value.
package epubquery
