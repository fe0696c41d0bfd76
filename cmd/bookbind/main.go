package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var wordpressURL string
var perPageCap int
var catalogLocale string

var rootCmd = &cobra.Command{
	Use:   "bookbind",
	Short: "Compile a WordPress book hierarchy into a printable document",
	Long: `bookbind walks a four-tier content hierarchy (book, chapter, topic,
section) exposed by a WordPress REST API and assembles it into a single
printable document.`,
}

func init() {
	defaultURL := os.Getenv("WORDPRESS_URL")
	rootCmd.PersistentFlags().StringVar(&wordpressURL, "url", defaultURL, "WordPress base URL (e.g. https://example.com)")
	rootCmd.PersistentFlags().IntVar(&perPageCap, "per-page", 100, "per_page cap sent on collection requests")
	rootCmd.PersistentFlags().StringVar(&catalogLocale, "locale", "en", "locale used to order the catalog")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
