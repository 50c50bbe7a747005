package epubquery

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// blockTags is the set of tags that delimit output lines during text
// extraction. Each block-level element is rendered on its own line.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags is the set of tags whose content is skipped during text extraction.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

var selfClosingSkipTagPattern = regexp.MustCompile(`(?is)<(script|style)\b([^>]*)/>`)

func normalizeSelfClosingSkipTags(src string) string {
	if !selfClosingSkipTagPattern.MatchString(src) {
		return src
	}
	return selfClosingSkipTagPattern.ReplaceAllString(src, `<$1$2></$1>`)
}

// titleTags lists the elements consulted for title derivation, in priority
// order: the first h1 anywhere in the document beats any h2, and so on.
var titleTags = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.Title}

// extractChapter converts one content document's raw bytes into a Chapter.
// It never fails: undecodable bytes are replaced, malformed markup is
// rendered best-effort, and a missing title falls back to the file name.
func extractChapter(raw []byte, fileName string, orderIndex int) Chapter {
	src := normalizeSelfClosingSkipTags(decodeText(raw))
	return Chapter{
		Title:      deriveTitle(src, fileName),
		Content:    strings.Join(extractLines(src), "\n"),
		FileName:   fileName,
		OrderIndex: orderIndex,
	}
}

// decodeText decodes raw document bytes to a UTF-8 string. A UTF-8 BOM is
// stripped; a UTF-16 BOM triggers transcoding; any remaining invalid byte
// sequences are replaced with U+FFFD rather than aborting.
func decodeText(raw []byte) string {
	raw = stripBOM(raw)
	if hasUTF16BOM(raw) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if out, _, err := transform.Bytes(dec, raw); err == nil {
			raw = out
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// hasUTF16BOM reports whether data starts with a UTF-16 byte order mark.
func hasUTF16BOM(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return (data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)
}

// extractLines renders the markup as plain-text lines. Block-level elements
// (blockTags) open and close lines; script/style subtrees are skipped; each
// line is whitespace-collapsed and trimmed; empty lines are dropped.
//
// Tokenizer errors end extraction with whatever was accumulated so far, so
// truncated or malformed markup still yields partial text.
func extractLines(src string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(src))

	var lines []string
	var cur strings.Builder
	flush := func() {
		line := strings.TrimSpace(cur.String())
		cur.Reset()
		if line != "" {
			lines = append(lines, line)
		}
	}

	skipDepth := 0 // depth inside a skip tag
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF and real parse errors alike: degrade, never fail.
			flush()
			return lines

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockTags[a] {
				flush()
			}

		case html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			if skipDepth > 0 {
				continue
			}
			if blockTags[atom.Lookup(tn)] {
				flush()
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockTags[a] {
				flush()
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := collapseWhitespace(string(tokenizer.Text()))
			// Adjacent tokens may both carry an edge space; keep one.
			if strings.HasPrefix(text, " ") && strings.HasSuffix(cur.String(), " ") {
				text = text[1:]
			}
			cur.WriteString(text)
		}
	}
}

// deriveTitle scans the document for the first element in titleTags priority
// order and returns its trimmed text. When no candidate has text, the base
// name of fileName is returned, so the title is never empty.
func deriveTitle(src, fileName string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err == nil {
		for _, a := range titleTags {
			n := findElement(doc, a)
			if n == nil {
				continue
			}
			if t := strings.TrimSpace(collapseWhitespace(nodeText(n))); t != "" {
				return t
			}
		}
	}
	return path.Base(fileName)
}

// findElement performs a depth-first search for a node with the given atom tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}

// nodeText concatenates the text content of the subtree rooted at n.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// collapseWhitespace replaces runs of whitespace characters with a single
// space. A non-empty all-whitespace input collapses to a single space, not
// to nothing: the text token between two adjacent inline elements is often
// pure whitespace, and dropping it would merge the surrounding words.
// Leading and trailing whitespace is likewise preserved as a single space;
// line-level trimming happens later, at flush.
func collapseWhitespace(s string) string {
	var buf strings.Builder
	inSpace := false
	hasNonSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inSpace = true
		} else {
			if inSpace && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteRune(r)
			inSpace = false
			hasNonSpace = true
		}
	}
	if !hasNonSpace {
		if len(s) > 0 {
			return " "
		}
		return ""
	}
	result := buf.String()
	if isWhitespace(rune(s[0])) {
		result = " " + result
	}
	if inSpace {
		result = result + " "
	}
	return result
}

// isWhitespace returns true if r is an ASCII whitespace character.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
