package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alirezadp10/ezapply/internal/config"
)

var passwordCmd = &cobra.Command{
	Use:   "password <username>",
	Short: "Store the login password in the OS keyring",
	Long:  "Saves the password under service \"ezapply\" so LINKEDIN_PASSWORD can stay out of the env file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPassword,
}

func init() {
	rootCmd.AddCommand(passwordCmd)
}

func runPassword(cmd *cobra.Command, args []string) error {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	if err := config.SetPassword(args[0], password); err != nil {
		return err
	}
	fmt.Println("Password stored in keyring.")
	return nil
}
