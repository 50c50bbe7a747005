package epubquery

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an ePub archive.
const containerPath = "META-INF/container.xml"

// parseContainer locates and parses the OPF path from the ePub ZIP archive.
//
// It first tries META-INF/container.xml (case-insensitive lookup). If the
// file is missing, it falls back to scanning all ZIP entries for a ".opf"
// file. Returns a wrapped ErrInvalidManifest if no OPF path can be found.
func parseContainer(zr *zip.Reader) (string, error) {
	if f := findFileInsensitive(zr, containerPath); f != nil {
		return parseContainerXML(f)
	}
	return fallbackFindOPF(zr)
}

// parseContainerXML reads and decodes a container.xml ZIP entry, returning
// the full-path of the package descriptor rootfile.
func parseContainerXML(f *zip.File) (string, error) {
	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epubquery: read container.xml: %w", ErrInvalidManifest)
	}

	data = stripBOM(data)

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("epubquery: parse container.xml: %w", ErrInvalidManifest)
	}

	if len(c.RootFiles) == 0 {
		return "", fmt.Errorf("epubquery: container.xml has no rootfile entries: %w", ErrInvalidManifest)
	}

	// Prefer the rootfile declared as an OPF package; otherwise take the
	// first one with a non-empty path.
	var fallbackPath string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return fullPath, nil
		}
		if fallbackPath == "" {
			fallbackPath = fullPath
		}
	}

	if fallbackPath == "" {
		return "", fmt.Errorf("epubquery: container.xml rootfile has empty full-path: %w", ErrInvalidManifest)
	}

	return fallbackPath, nil
}

// fallbackFindOPF scans the ZIP entries for the first file ending in ".opf"
// (case-insensitive). Returns ErrInvalidManifest if none is found.
func fallbackFindOPF(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epubquery: no OPF file found in archive: %w", ErrInvalidManifest)
}
