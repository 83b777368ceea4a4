package cli

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cyberscan/scand/internal/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage scan profiles",
	Long:  `Inspect the built-in scan profiles accepted as scan_type values.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scan profiles",
	RunE:  runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <scan-type>",
	Short: "Show a single scan profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
}

func runProfilesList(_ *cobra.Command, _ []string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Timeout", "Description")

	for _, p := range profiles.List() {
		_ = table.Append([]string{p.ID, p.Name, p.Timeout.String(), p.Description})
	}

	return table.Render()
}

func runProfilesShow(_ *cobra.Command, args []string) error {
	profile, err := profiles.Resolve(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", profile.ID)
	fmt.Printf("Name:        %s\n", profile.Name)
	fmt.Printf("Description: %s\n", profile.Description)
	fmt.Printf("Timeout:     %s\n", profile.Timeout)
	fmt.Printf("Arguments:   %s\n", profile.Args)
	return nil
}
