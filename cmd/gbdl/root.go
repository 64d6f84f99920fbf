package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nwatts/gbdl/pkg/app"
	"github.com/nwatts/gbdl/pkg/archive"
	"github.com/nwatts/gbdl/pkg/data"
	"github.com/nwatts/gbdl/pkg/services"
	"github.com/nwatts/gbdl/pkg/sources"
	"github.com/nwatts/gbdl/pkg/utils"
)

var cfgFile string

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C3E88D")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F07178")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#546E7A"))
)

var rootCmd = &cobra.Command{
	Use:   "gbdl [url]",
	Short: "Download Google Books previews as PDF, CBZ, or EPUB",
	Long: "gbdl downloads the preview pages of a Google Books volume and " +
		"assembles them into PDF, CBZ, or EPUB files. Magazine and newspaper " +
		"catalogs can be downloaded one issue, one period, or in full.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default gbdl.yaml in . or ~/.config/gbdl)")
	rootCmd.PersistentFlags().String("catalog", "", "DuckDB file collecting issue metadata")

	rootCmd.Flags().StringP("target-dir", "o", ".", "directory outputs are written to")
	rootCmd.Flags().BoolP("keep-images", "k", false, "keep the raw page images next to the outputs")
	rootCmd.Flags().StringSliceP("format", "f", []string{"pdf"}, "output formats: pdf, cbz, epub, all, none")
	rootCmd.Flags().StringP("download-mode", "m", "single", "single, period, or full")
	rootCmd.Flags().StringP("archive", "a", "", "file recording completed issue IDs, skipped on later runs")
	rootCmd.Flags().IntP("max-attempts", "r", 3, "per-page retry budget, 0 retries forever")
	rootCmd.Flags().Bool("progress", false, "render an interactive progress view")

	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	for _, name := range []string{
		"target-dir", "keep-images", "format", "download-mode",
		"archive", "max-attempts", "progress",
	} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gbdl")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gbdl"))
		}
	}
	viper.SetEnvPrefix("GBDL")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runRoot(cmd *cobra.Command, args []string) error {
	formats, err := data.ParseFormats(viper.GetStringSlice("format"))
	if err != nil {
		return err
	}
	mode, err := data.ParseDownloadMode(viper.GetString("download-mode"))
	if err != nil {
		return err
	}

	ledger, err := archive.Load(viper.GetString("archive"))
	if err != nil {
		return err
	}

	var catalog *data.Catalog
	if path := viper.GetString("catalog"); path != "" {
		catalog, err = data.OpenCatalog(path)
		if err != nil {
			return err
		}
		defer catalog.Close()
	}

	source := sources.NewGoogleBooks(utils.NewClient(30*time.Second, ""))
	pipeline := services.NewPipeline(source, ledger, catalog, services.Options{
		TargetDir:   viper.GetString("target-dir"),
		KeepImages:  viper.GetBool("keep-images"),
		Formats:     formats,
		MaxAttempts: viper.GetInt("max-attempts"),
	})

	// The progress consumer owns the channel until the pipeline closes
	// it at the end of the run.
	progressDone := make(chan struct{})
	if viper.GetBool("progress") {
		go func() {
			defer close(progressDone)
			if err := app.Run(pipeline.Progress()); err != nil {
				log.Printf("progress view failed: %v", err)
			}
		}()
	} else {
		go func() {
			defer close(progressDone)
			printProgress(pipeline.Progress())
		}()
	}

	summary, err := pipeline.Run(args[0], mode)
	<-progressDone
	if err != nil {
		return err
	}

	printSummary(summary)
	if n := summary.Failed(); n > 0 {
		return fmt.Errorf("%d issue(s) failed", n)
	}
	return nil
}

func printProgress(ch <-chan services.Progress) {
	lastIssue := ""
	for p := range ch {
		switch p.Status {
		case services.StatusIdentifying:
			fmt.Printf("🔍 identifying %s\n", p.IssueID)
		case services.StatusDownloading:
			if p.IssueID != lastIssue {
				lastIssue = p.IssueID
				fmt.Printf("📥 %s (%d pages)\n", p.Title, p.TotalPages)
			}
		case services.StatusComplete:
			fmt.Printf("✅ %s\n", p.Title)
		case services.StatusError:
			fmt.Println(failStyle.Render(fmt.Sprintf("❌ %s: %v", p.IssueID, p.Err)))
		}
	}
}

func printSummary(s *services.RunSummary) {
	fmt.Println()
	fmt.Println(okStyle.Render(fmt.Sprintf("%d completed", s.Completed())))
	if n := s.Skipped(); n > 0 {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%d skipped", n)))
	}
	if s.Failed() > 0 {
		fmt.Println(failStyle.Render(fmt.Sprintf("%d failed", s.Failed())))
		for _, r := range s.Results {
			if r.Status == services.StatusFailed {
				fmt.Println(failStyle.Render(fmt.Sprintf("  %s: %v", r.URL, r.Err)))
			}
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
