package epubquery

import "errors"

// Sentinel errors returned by the epubquery package.
var (
	// ErrNotFound indicates the ePub path does not exist on disk.
	ErrNotFound = errors.New("epubquery: file does not exist")

	// ErrCorruptArchive indicates the file exists but is not a readable
	// ZIP archive.
	ErrCorruptArchive = errors.New("epubquery: not a valid zip archive")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epubquery: file not found in archive")

	// ErrInvalidManifest indicates the package descriptor (container.xml
	// or OPF) is missing or malformed.
	ErrInvalidManifest = errors.New("epubquery: invalid or missing package manifest")

	// ErrSpineReference indicates a spine itemref points at a manifest
	// id that does not exist.
	ErrSpineReference = errors.New("epubquery: spine references unknown manifest id")

	// ErrInvalidPattern indicates a search pattern is empty or, in regex
	// mode, fails to compile.
	ErrInvalidPattern = errors.New("epubquery: invalid search pattern")
)
