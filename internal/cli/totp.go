package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var totpAccountID string

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Manage the vault's second factor",
}

var totpEnrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a TOTP second factor, saving a QR code to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		accountID := totpAccountID
		if accountID == "" {
			accountID = "slasshy-vault"
		}
		qr, err := store.EnrollSecondFactor("slasshy", accountID)
		if err != nil {
			return fmt.Errorf("failed to enroll second factor: %w", err)
		}
		qrPath := filepath.Join(cfg.VaultDir, "totp-enroll.png")
		if err := os.WriteFile(qrPath, qr, 0600); err != nil {
			return fmt.Errorf("failed to write enrollment qr: %w", err)
		}
		color.New(color.FgGreen).Println("Second factor enrolled. Scan the QR code at", qrPath)
		return nil
	},
}

var totpVerifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Verify a TOTP code against the enrolled second factor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		if err := store.VerifySecondFactor(args[0]); err != nil {
			return fmt.Errorf("second factor verification failed")
		}
		color.New(color.FgGreen).Println("Code accepted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(totpCmd)
	totpCmd.AddCommand(totpEnrollCmd, totpVerifyCmd)
	totpEnrollCmd.Flags().StringVar(&totpAccountID, "account", "", "Account label shown in the authenticator app")
}
