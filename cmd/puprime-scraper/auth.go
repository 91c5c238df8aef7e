package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mosfeqahamed/puprime-scraping/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage portal credentials",
	Long: `Manage stored PU Prime portal credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store portal credentials securely",
	Long: `Store portal credentials in the system keychain or an encrypted file.

You will be prompted for the portal email and password. The optional
label names the credential set; it defaults to "default".`,
	Example: `  # Interactive login
  puprime-scraper auth login

  # Store under a named label
  puprime-scraper auth login staging`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout [label]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential sets",
	RunE:  runAuthList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authListCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	label := "default"
	if len(args) > 0 {
		label = args[0]
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Portal email: ")
	loginEmail, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	loginEmail = strings.TrimSpace(loginEmail)
	if loginEmail == "" {
		return fmt.Errorf("email must not be empty")
	}

	fmt.Print("Portal password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	creds := &auth.Credentials{
		Label:    label,
		Email:    loginEmail,
		Password: string(passwordBytes),
	}
	if err := manager.Store(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored as %q\n", label)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	label := "default"
	if len(args) > 0 {
		label = args[0]
	}

	if err := manager.Delete(label); err != nil {
		return fmt.Errorf("failed to remove credentials %q: %w", label, err)
	}
	fmt.Printf("Removed credentials %q\n", label)
	return nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	all, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("No stored credentials")
		return nil
	}

	for _, creds := range all {
		fmt.Printf("%-16s %s\n", creds.Label, maskEmail(creds.Email))
	}
	return nil
}

// maskEmail hides most of the local part when listing credentials.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
