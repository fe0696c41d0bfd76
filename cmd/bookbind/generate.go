package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/dgallion1/bookbind/internal/catalog"
	"github.com/dgallion1/bookbind/internal/render"
	"github.com/dgallion1/bookbind/internal/wordpress"
	"github.com/spf13/cobra"
)

var outputPath string
var formatName string
var maxAttempts int
var retryBackoff time.Duration

var generateCmd = &cobra.Command{
	Use:   "generate <bookID>",
	Short: "Fetch a book's content tree and write a printable document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if wordpressURL == "" {
			return fmt.Errorf("WordPress URL is required (--url or WORDPRESS_URL)")
		}
		bookID, err := strconv.Atoi(args[0])
		if err != nil || bookID <= 0 {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		format, err := render.ParseFormat(formatName)
		if err != nil {
			return err
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		wp := wordpress.NewClient(wordpressURL, perPageCap)
		defer wp.Close()

		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		// Resolve the title from the catalog; a catalog miss is not
		// fatal here, the renderer falls back to a placeholder.
		var bookTitle string
		if book, found, err := catalog.NewLoader(wp, catalogLocale, 0, log).Find(ctx, bookID); err == nil && found {
			bookTitle = book.Title
		} else {
			fmt.Fprintln(out, dimStyle.Render("book not found in catalog, continuing without a title"))
		}

		fetcher := booktree.NewFetcher(wp, maxAttempts, retryBackoff, log)
		tree, err := fetcher.FetchTree(ctx, bookID, bookTitle, func(phase, message string) {
			fmt.Fprintln(out, dimStyle.Render(message))
		})
		if err != nil {
			return err
		}
		if len(tree.Chapters) == 0 {
			return fmt.Errorf("no content found for book %d", bookID)
		}

		doc, err := render.Render(tree, format)
		if err != nil {
			return err
		}

		path := outputPath
		if path == "" {
			path = fmt.Sprintf("book-%d.%s", bookID, format.Extension())
		}
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}

		sum := tree.Summary()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("wrote %s (%d chapters, %d topics, %d sections)",
			path, sum.Chapters, sum.Topics, sum.Sections)))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default book-<id>.<ext>)")
	generateCmd.Flags().StringVarP(&formatName, "format", "f", "html", "Output format (html, markdown, docx)")
	generateCmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "Maximum attempts per collection fetch")
	generateCmd.Flags().DurationVar(&retryBackoff, "backoff", 500*time.Millisecond, "Base backoff between retries (linear)")
	rootCmd.AddCommand(generateCmd)
}
