package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"talino-cli/internal/app"
	"talino-cli/internal/nav"
	"talino-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagServer       string
	flagConversation string
	flagEmail        string
	flagPassword     string
)

func loadApp(interactive bool) (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.Server = flagServer
	}
	return app.New(cfg, interactive)
}

func credentials(cmd *cobra.Command) (string, string, error) {
	email := flagEmail
	password := flagPassword
	reader := bufio.NewReader(cmd.InOrStdin())
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		password = strings.TrimSpace(line)
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}

func main() {
	root := &cobra.Command{
		Use:     "talino",
		Short:   "Terminal client for the TALINO chat backend",
		Long:    "talino is an interactive chat client for the TALINO backend.\n\nRun without arguments for the chat TUI. Use --conversation to open a saved conversation directly.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(true)
			if err != nil {
				return err
			}
			defer application.Close()

			if flagConversation != "" {
				path := nav.ConversationPath(flagConversation)
				if _, ok := nav.ConversationID(path); !ok {
					return fmt.Errorf("--conversation must be a conversation id (UUID)")
				}
				// Opening a saved conversation needs the identity cookie
				// in place first.
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				application.ProbeIdentity(ctx)
				cancel()
				application.Controller.ResolveStartup(path)
			}

			p := tea.NewProgram(tui.NewMainModel(application), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	root.PersistentFlags().StringVar(&flagServer, "server", "", "Backend base URL (overrides config)")
	root.Flags().StringVar(&flagConversation, "conversation", "", "Open a saved conversation by id")

	authFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
		cmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when omitted)")
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the TALINO backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(false)
			if err != nil {
				return err
			}
			defer application.Close()

			email, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			user, err := application.Client.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}
	authFlags(loginCmd)

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a TALINO account",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(false)
			if err != nil {
				return err
			}
			defer application.Close()

			email, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			user, err := application.Client.Register(ctx, email, password)
			if err != nil {
				return fmt.Errorf("register failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", user.Email)
			return nil
		},
	}
	authFlags(registerCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of the TALINO backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(false)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			if err := application.Client.Logout(ctx); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}

	conversationsCmd := &cobra.Command{
		Use:   "conversations",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(false)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			items, err := application.Client.ListConversations(ctx)
			if err != nil {
				return fmt.Errorf("list conversations failed: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations.")
				return nil
			}
			for _, conv := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
					conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), conv.Title)
			}
			return nil
		},
	}

	root.AddCommand(loginCmd, registerCmd, logoutCmd, conversationsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
