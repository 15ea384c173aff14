package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(awardCmd)
	awardCmd.AddCommand(awardManualCmd)
	awardCmd.AddCommand(awardSourceCmd)

	awardManualCmd.Flags().StringP("reason", "r", "", "Reason recorded in the audit log")
	awardSourceCmd.Flags().StringP("reason", "r", "", "Reason recorded in the audit log")
}

var awardCmd = &cobra.Command{
	Use:   "award",
	Short: "Grant PCC tokens",
}

// ─── award manual ───────────────────────────────────────────────────────────

var awardManualCmd = &cobra.Command{
	Use:   "manual USER_ID TOKENS",
	Short: "Grant tokens directly to a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runAwardManual,
}

func runAwardManual(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	tokens, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid token amount %q", args[1])
	}
	reason, _ := cmd.Flags().GetString("reason")

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	balance, err := svcs.ledger.AwardManual(userID, tokens, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Awarded %.4f PCC to user %d (balance %.4f)\n", tokens, userID, balance)
	return nil
}

// ─── award source ───────────────────────────────────────────────────────────

var awardSourceCmd = &cobra.Command{
	Use:   "source SOURCE_TYPE SOURCE_REF TOKENS",
	Short: "Grant tokens for a registered source event, at most once",
	Long: `Grant tokens to the owner of a registered source event, for example
an approved segregation log. The award is fenced: repeating the command
for the same source fails and changes nothing.`,
	Args: cobra.ExactArgs(3),
	RunE: runAwardSource,
}

func runAwardSource(cmd *cobra.Command, args []string) error {
	sourceType, sourceRef := args[0], args[1]
	tokens, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid token amount %q", args[2])
	}
	reason, _ := cmd.Flags().GetString("reason")

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	balance, err := svcs.ledger.AwardForSource(sourceType, sourceRef, tokens, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Awarded %.4f PCC for %s/%s (owner balance %.4f)\n",
		tokens, sourceType, sourceRef, balance)
	return nil
}
