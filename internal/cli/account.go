package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountBalanceCmd)
	accountCmd.AddCommand(accountEventsCmd)

	accountEventsCmd.Flags().IntP("limit", "n", 20, "Maximum number of events to show")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage reward accounts",
}

// ─── account create ─────────────────────────────────────────────────────────

var accountCreateCmd = &cobra.Command{
	Use:   "create USER_ID",
	Short: "Create a zero-balance account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountCreate,
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	if err := svcs.ledger.EnsureAccount(userID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Account %d ready\n", userID)
	return nil
}

// ─── account balance ────────────────────────────────────────────────────────

var accountBalanceCmd = &cobra.Command{
	Use:   "balance USER_ID",
	Short: "Show a user's PCC balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountBalance,
}

func runAccountBalance(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	balance, err := svcs.ledger.Balance(userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "User %d: %.4f PCC\n", userID, balance)
	return nil
}

// ─── account events ─────────────────────────────────────────────────────────

var accountEventsCmd = &cobra.Command{
	Use:   "events USER_ID",
	Short: "List a user's activity events, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountEvents,
}

func runAccountEvents(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	events, err := svcs.ledger.Events(userID, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "No events.")
		return nil
	}

	for _, ev := range events {
		fmt.Fprintf(os.Stdout, "%s  %-26s carbon=%+.3fkg pcc=%+.4f\n",
			ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Type, ev.CarbonKg, ev.PCCTokens)
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func parseUserID(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid user ID %q", raw)
	}
	return userID, nil
}
