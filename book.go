package epubquery

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// Book is a loaded ePub document: an open container plus the resolved
// reading order and metadata. Use Open or NewReader to create one.
//
// Container and manifest resolution happen at load time and their errors
// surface from Open/NewReader. Chapter text extraction is deferred to the
// first call of Chapters (or any query built on it) and runs exactly once;
// the cached chapter list is read-only afterwards and safe for concurrent
// readers.
type Book struct {
	zip      *zip.Reader
	zipExact map[string]*zip.File // exact-match ZIP file index
	zipLower map[string]*zip.File // lowercase ZIP file index
	closer   io.Closer            // non-nil only when created via Open()
	opfPath  string
	spine    []spineItem
	metadata Metadata
	warnings []string

	chapterOnce sync.Once
	chapters    []Chapter
}

// Open opens an ePub file at the given path. The returned error wraps
// ErrNotFound when the path does not exist and ErrCorruptArchive when the
// bytes are not a readable ZIP archive. The caller must call Close when
// done reading from the book.
func Open(path string) (*Book, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("epubquery: open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("epubquery: open %s: %w", path, ErrCorruptArchive)
	}

	b, err := initBook(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return b, nil
}

// NewReader creates a Book from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only cleans
// up internal state.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epubquery: open zip: %w", ErrCorruptArchive)
	}

	return initBook(zr, nil)
}

// initBook performs common initialisation: mimetype validation, container
// parsing, and manifest/spine resolution.
func initBook(zr *zip.Reader, closer io.Closer) (*Book, error) {
	b := &Book{
		zip:    zr,
		closer: closer,
	}

	// Build ZIP file index for O(1) lookups.
	b.buildZipIndex()

	// Validate mimetype. Deviations are warnings, not errors.
	b.validateMimetype()

	// Parse container to find the OPF path.
	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	b.opfPath = opfPath

	// Read and parse the OPF.
	opfFile := b.findFile(opfPath)
	if opfFile == nil {
		return nil, fmt.Errorf("epubquery: OPF file not found in archive: %s: %w", opfPath, ErrInvalidManifest)
	}
	opfData, err := readZipFile(opfFile)
	if err != nil {
		return nil, fmt.Errorf("epubquery: read OPF file %s: %w", opfPath, ErrInvalidManifest)
	}

	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}

	spine, err := resolveSpine(pkg)
	if err != nil {
		return nil, err
	}
	// Spine hrefs are relative to the OPF location; resolve them to
	// ZIP-internal paths up front.
	for i := range spine {
		if resolved := resolveRelativePath(opfPath, spine[i].Href); resolved != "" {
			spine[i].Href = resolved
		}
	}
	b.spine = spine
	b.metadata = extractMetadata(pkg)

	return b, nil
}

// validateMimetype checks that the first ZIP entry is named "mimetype" and
// contains "application/epub+zip". Deviations are recorded as warnings.
func (b *Book) validateMimetype() {
	if len(b.zip.File) == 0 {
		b.warnings = append(b.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := b.zip.File[0]
	if first.Name != "mimetype" {
		b.warnings = append(b.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}

	data, err := readZipFile(first)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}

	if string(data) != expectedMimetype {
		b.warnings = append(b.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Book. When the Book was created via
// Open, Close closes the underlying file. Close is idempotent.
func (b *Book) Close() error {
	if b.closer != nil {
		err := b.closer.Close()
		b.closer = nil
		return err
	}
	return nil
}

// ReadFile reads a file from the ePub archive by its ZIP-internal path.
// The lookup is case-insensitive as a fallback. A missing entry returns
// an error wrapping ErrFileNotFound.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f := b.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("epubquery: read %s: %w", name, ErrFileNotFound)
	}
	return readZipFile(f)
}

// Members returns the ZIP-internal paths of all archive entries in archive
// order. The order carries no reading-order meaning.
func (b *Book) Members() []string {
	names := make([]string, len(b.zip.File))
	for i, f := range b.zip.File {
		names[i] = f.Name
	}
	return names
}

// buildZipIndex builds exact-match and lowercase ZIP file indexes for O(1) lookups.
func (b *Book) buildZipIndex() {
	b.zipExact = make(map[string]*zip.File, len(b.zip.File))
	b.zipLower = make(map[string]*zip.File, len(b.zip.File))
	for _, f := range b.zip.File {
		if _, exists := b.zipExact[f.Name]; !exists {
			b.zipExact[f.Name] = f // first match wins for exact
		}
		lower := strings.ToLower(f.Name)
		if _, exists := b.zipLower[lower]; !exists {
			b.zipLower[lower] = f // first match wins for case-insensitive
		}
	}
}

// findFile looks up a ZIP entry by path using the pre-built index.
// It tries an exact match first, then falls back to a case-insensitive match.
func (b *Book) findFile(name string) *zip.File {
	if f, ok := b.zipExact[name]; ok {
		return f
	}
	if f, ok := b.zipLower[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}

// Metadata returns the document metadata resolved at load time.
func (b *Book) Metadata() Metadata {
	return copyMetadata(b.metadata)
}

// Warnings returns the list of non-fatal warnings accumulated during
// loading and chapter extraction.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// Chapters returns the extracted chapters in reading order. OrderIndex
// values are contiguous from 0 and follow the spine exactly.
//
// Extraction runs on the first call and the result is cached for the
// lifetime of the Book; subsequent calls are pure reads. A chapter whose
// content document is malformed or missing still yields a Chapter with
// best-effort (possibly empty) content rather than failing the document.
func (b *Book) Chapters() []Chapter {
	b.chapterOnce.Do(b.extractChapters)
	return append([]Chapter(nil), b.chapters...)
}

// extractChapters runs the text extractor over every spine item.
func (b *Book) extractChapters() {
	chapters := make([]Chapter, 0, len(b.spine))
	for i, si := range b.spine {
		raw, err := b.ReadFile(si.Href)
		if err != nil {
			// Degrade: a dangling spine entry becomes an empty chapter.
			b.warnings = append(b.warnings, fmt.Sprintf("chapter %s: %v", si.Href, err))
			raw = nil
		}
		chapters = append(chapters, extractChapter(raw, si.Href, i))
	}
	b.chapters = chapters
}

func copyMetadata(in Metadata) Metadata {
	return Metadata{
		Title:      cloneString(in.Title),
		Author:     cloneString(in.Author),
		Language:   cloneString(in.Language),
		Identifier: cloneString(in.Identifier),
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
