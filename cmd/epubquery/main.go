// Command epubquery inspects, searches, and extracts text from ePub files.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simp-lee/epubquery"
)

var (
	matchHeadingStyle = lipgloss.NewStyle().Bold(true)
	matchCountStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

// errChapterNotFound signals a failed chapter lookup. The messages are
// already on stderr by the time it is returned, so it only carries the
// non-zero exit status.
var errChapterNotFound = errors.New("chapter not found")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "epubquery",
		Short:        "Query and search ePub files",
		SilenceUsage: true,
	}
	root.AddCommand(
		newInfoCmd(),
		newChaptersCmd(),
		newSearchCmd(),
		newStatsCmd(),
		newExtractCmd(),
		newChapterCmd(),
	)
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <epub>",
		Short: "Display metadata and chapter count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			md := book.Metadata()
			fmt.Printf("Title:      %s\n", orUnknown(md.Title))
			fmt.Printf("Author:     %s\n", orUnknown(md.Author))
			fmt.Printf("Language:   %s\n", orUnknown(md.Language))
			fmt.Printf("Identifier: %s\n", orUnknown(md.Identifier))
			fmt.Printf("Chapters:   %d\n", len(book.Chapters()))
			return nil
		},
	}
}

func newChaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <epub>",
		Short: "List all chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			for i, title := range book.ChapterTitles() {
				fmt.Printf("%d. %s\n", i+1, title)
			}
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var (
		caseSensitive bool
		regex         bool
		contextLines  int
	)
	cmd := &cobra.Command{
		Use:   "search <epub> <pattern>",
		Short: "Search for a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			results, err := book.Search(args[1], epubquery.SearchOptions{
				CaseSensitive: caseSensitive,
				Regex:         regex,
				ContextLines:  contextLines,
			})
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No matches found.")
				return nil
			}

			fmt.Println(matchCountStyle.Render(fmt.Sprintf("Found %d match(es):", len(results))))
			fmt.Println()
			for _, r := range results {
				heading := fmt.Sprintf("--- %s (line %d) ---", r.ChapterTitle, r.LineNumber)
				fmt.Println(matchHeadingStyle.Render(heading))
				fmt.Println(r.Context)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&caseSensitive, "case-sensitive", "s", false, "match case exactly")
	cmd.Flags().BoolVarP(&regex, "regex", "r", false, "treat pattern as a regular expression")
	cmd.Flags().IntVarP(&contextLines, "context", "c", 1, "lines of context around matches")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <epub>",
		Short: "Show word count statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			report := book.WordCount()
			p := message.NewPrinter(language.English)
			p.Printf("Total words: %d\n", report.Total)
			fmt.Println("\nBy chapter:")
			for _, c := range report.ByChapter {
				p.Printf("  %s: %d\n", c.Title, c.Words)
			}
			return nil
		},
	}
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <epub> <output>",
		Short: "Extract full text content to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			if err := os.WriteFile(args[1], []byte(book.FullText()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Extracted text to %s\n", args[1])
			return nil
		},
	}
}

func newChapterCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "chapter <epub> <selector>",
		Short: "Extract one chapter by 1-based number or title substring",
		Args:  cobra.ExactArgs(2),
		// Errors are printed by the command itself so the not-found
		// message precedes the hint; cobra would print them last.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := epubquery.Open(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			defer book.Close()

			ch, ok := findChapter(book.Chapters(), args[1])
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "Chapter not found: %s\n", args[1])
				fmt.Fprintf(cmd.ErrOrStderr(), "Use 'epubquery chapters %s' to list available chapters.\n", args[0])
				return errChapterNotFound
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(ch.Content), 0o644); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
					return err
				}
				fmt.Printf("Extracted %q to %s\n", ch.Title, output)
				return nil
			}
			fmt.Println(ch.Content)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (prints to stdout if not set)")
	return cmd
}

// findChapter resolves a chapter selector: a 1-based index when selector is
// numeric and in range, otherwise the first chapter whose title contains
// selector case-insensitively.
func findChapter(chapters []epubquery.Chapter, selector string) (epubquery.Chapter, bool) {
	if n, err := strconv.Atoi(selector); err == nil && n >= 1 && n <= len(chapters) {
		return chapters[n-1], true
	}
	needle := strings.ToLower(selector)
	for _, ch := range chapters {
		if strings.Contains(strings.ToLower(ch.Title), needle) {
			return ch, true
		}
	}
	return epubquery.Chapter{}, false
}

// orUnknown renders an optional metadata field for display.
func orUnknown(p *string) string {
	if p == nil || *p == "" {
		return "Unknown"
	}
	return *p
}
