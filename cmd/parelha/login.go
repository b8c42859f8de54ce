package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login <login>",
	Short: "Sign in and remember the session",
	Long: `Sign in against the annotation server. The password is read from
--password, or from the first line of standard input.

Example:
  echo "$PASSWORD" | parelha login marie`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("while reading password from stdin: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		result, err := e.client.Login(cmd.Context(), domain.Credentials{Login: args[0], Password: password})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		username := result.Username
		if username == "" {
			username = args[0]
		}
		if err := e.sessions.Set(session.Session{Token: result.Token, Username: username, Role: result.Role}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", username, result.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.sessions.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		current := e.sessions.Current()
		if !current.Authenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		role := current.Role
		if current.IsAdmin() {
			role += " (admin)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", current.Username, role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "Password; read from stdin when empty")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
