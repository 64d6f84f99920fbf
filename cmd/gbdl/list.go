package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nwatts/gbdl/pkg/data"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues recorded in the metadata catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("catalog")
		if path == "" {
			return errors.New("no catalog configured, pass --catalog or set it in the config file")
		}

		catalog, err := data.OpenCatalog(path)
		if err != nil {
			return err
		}
		defer catalog.Close()

		issues, err := catalog.List()
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Println("catalog is empty")
			return nil
		}

		for _, issue := range issues {
			fmt.Printf("%-14s %s\n", issue.ID, issue.FullTitle())
		}
		return nil
	},
}
