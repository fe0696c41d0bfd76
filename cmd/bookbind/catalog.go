package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgallion1/bookbind/internal/catalog"
	"github.com/dgallion1/bookbind/internal/wordpress"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the books available on the WordPress site",
	RunE: func(cmd *cobra.Command, args []string) error {
		if wordpressURL == "" {
			return fmt.Errorf("WordPress URL is required (--url or WORDPRESS_URL)")
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		wp := wordpress.NewClient(wordpressURL, perPageCap)
		defer wp.Close()

		books, err := catalog.NewLoader(wp, catalogLocale, 0, log).Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(books) == 0 {
			fmt.Fprintln(out, dimStyle.Render("no books available"))
			return nil
		}
		for _, b := range books {
			fmt.Fprintf(out, "%s %s\n", idStyle.Render(strconv.Itoa(b.ID)), titleStyle.Render(b.Title))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
