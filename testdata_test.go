package epubquery

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// buildTestZip creates an in-memory ZIP archive from the provided files map
// (path → content) and returns a *zip.Reader over the resulting bytes.
// It calls t.Fatal on any error.
func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	data := zipBytes(t, files)
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// zipBytes serialises the files map to ZIP archive bytes. The mimetype
// entry, when present, is written first (the ePub spec requires it to be
// the first entry).
func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	write := func(name, content string) {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zipBytes: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("zipBytes: write %s: %v", name, err)
		}
	}
	if mt, ok := files["mimetype"]; ok {
		write("mimetype", mt)
	}
	for name, content := range files {
		if name == "mimetype" {
			continue
		}
		write(name, content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestBook builds an in-memory ePub from the files map and loads it
// via NewReader. It calls t.Fatal when loading fails.
func buildTestBook(t *testing.T, files map[string]string) *Book {
	t.Helper()
	data := zipBytes(t, files)
	b, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestBook: %v", err)
	}
	return b
}

// buildTestBookFile writes an ePub archive to a temporary file and returns
// the file path. This variant is for testing Open, which requires a path.
func buildTestBookFile(t *testing.T, files map[string]string) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, zipBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestBookFile: write file: %v", err)
	}
	return fp
}

// testBookFiles returns a well-formed two-chapter ePub with full metadata
// and headings. Chapter contents include the heading line.
func testBookFiles() map[string]string {
	return map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Jane Doe</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier>urn:uuid:00000000-0000-0000-0000-000000000001</dc:identifier>
  </metadata>
  <manifest>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`,
		"OEBPS/text/ch1.xhtml": `<html><head><title>Doc One</title></head><body><h1>Chapter One</h1><p>The cat sat.</p><p>It sat on the mat.</p></body></html>`,
		"OEBPS/text/ch2.xhtml": `<html><head><title>Doc Two</title></head><body><h1>Chapter Two</h1><p>A dog barked.</p></body></html>`,
	}
}

// searchBookFiles returns a two-chapter ePub whose documents have no
// headings, so chapter titles fall back to file names and contents are
// exactly the paragraph lines.
func searchBookFiles() map[string]string {
	return map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Search Fixture</dc:title>
  </metadata>
  <manifest>
    <item id="a" href="a.xhtml" media-type="application/xhtml+xml"/>
    <item id="b" href="b.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="a"/>
    <itemref idref="b"/>
  </spine>
</package>`,
		"a.xhtml": `<html><body><p>Alpha line one</p><p>Alpha line two</p></body></html>`,
		"b.xhtml": `<html><body><p>Beta line one</p></body></html>`,
	}
}
