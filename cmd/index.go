package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cgblog/internal/config"
	"github.com/ziadkadry99/cgblog/internal/indexgen"
	"github.com/ziadkadry99/cgblog/internal/progress"
)

var indexExclude []string

var indexCmd = &cobra.Command{
	Use:   "index [content-dir]",
	Short: "Regenerate the article index of a content directory",
	Long: `Reads every Articles/*.json metadata file under the content directory
and writes Articles/index.json (newest first, hidden articles left out),
Articles/sitemap_template.xml, and Pages/projects-generated.json when
Pages/projects.json exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		log := newLogger(config.DefaultLogLevel)

		res, err := indexgen.Generate(indexgen.Options{
			Root:     root,
			Exclude:  indexExclude,
			Reporter: progress.NewReporter("Indexing articles"),
			Log:      log,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Indexed %d article(s)", res.Articles)
		if res.Hidden > 0 {
			fmt.Fprintf(out, ", %d hidden", res.Hidden)
		}
		if res.Invalid > 0 {
			fmt.Fprintf(out, ", %d with invalid metadata", res.Invalid)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Sitemap template: %d URL(s)\n", res.SitemapEntries)
		if res.Projects >= 0 {
			fmt.Fprintf(out, "Projects: %d\n", res.Projects)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "glob patterns (relative to Articles/) to leave out, e.g. drafts/**")
	rootCmd.AddCommand(indexCmd)
}
