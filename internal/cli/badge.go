package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(badgeCmd)
	badgeCmd.AddCommand(badgeListCmd)
}

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Inspect achievement badges",
}

var badgeListCmd = &cobra.Command{
	Use:   "list USER_ID",
	Short: "List a user's earned badges",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadgeList,
}

func runBadgeList(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	badges, err := svcs.badges.BadgesForUser(userID)
	if err != nil {
		return err
	}
	if len(badges) == 0 {
		fmt.Fprintln(os.Stdout, "No badges yet.")
		return nil
	}

	for _, b := range badges {
		fmt.Fprintf(os.Stdout, "%-12s %s (%s)\n", b.Category, b.Name, b.CriteriaKey)
	}
	return nil
}
