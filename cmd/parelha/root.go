package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lewtec/parelha/annotation"
	"github.com/lewtec/parelha/internal/client"
	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/journal"
	"github.com/lewtec/parelha/internal/session"
)

// rootCmd serves the web front when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parelha",
	Short: "Annotate text pairs assigned to you",
	Long: strings.TrimSpace(`
Work through the text-pair classification tasks assigned to you on an
annotation server, from the browser or the command line.
    `),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation web front",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// env is what every command needs, built from config and flags
type env struct {
	config   *annotation.Config
	sessions *session.Manager
	client   *client.Client
	journal  *journal.Journal
}

func (e *env) Close() {
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			log.Printf("journal: %s", err)
		}
	}
}

// submissionLog keeps a disabled journal a true nil interface
func (e *env) submissionLog() domain.SubmissionLog {
	if e.journal == nil {
		return nil
	}
	return e.journal
}

func setup(cmd *cobra.Command, withJournal bool) (*env, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	config, err := annotation.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		config.API.BaseURL = api
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		config.UI.Addr = addr
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dir, err := config.SessionDir()
	if err != nil {
		return nil, err
	}
	store, err := session.NewDiskStore(dir)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store)
	if err := sessions.Init(); err != nil {
		return nil, err
	}

	e := &env{
		config:   config,
		sessions: sessions,
		client: client.New(client.Config{
			BaseURL:  config.API.BaseURL,
			Timeout:  config.API.Timeout,
			CacheTTL: config.API.CacheTTL,
		}, sessions),
	}

	if withJournal {
		path, err := config.JournalPath()
		if err != nil {
			return nil, err
		}
		if path != "" {
			e.journal, err = journal.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open journal: %w", err)
			}
		}
	}
	return e, nil
}

// requireLogin fails early instead of letting the server answer 401
func (e *env) requireLogin() error {
	if !e.sessions.Current().Authenticated() {
		return fmt.Errorf("not logged in: run 'parelha login' first")
	}
	return nil
}

// apiFailure forgets a session the server no longer accepts
func (e *env) apiFailure(err error) error {
	if !client.IsUnauthenticated(err) {
		return err
	}
	if clearErr := e.sessions.Clear(); clearErr != nil {
		log.Printf("session: %s", clearErr)
	}
	return fmt.Errorf("session expired, run 'parelha login' again: %w", err)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	app := &annotation.AnnotatorApp{
		Config:      e.config,
		Sessions:    e.sessions,
		Auth:        e.client,
		Tasks:       e.client,
		Annotations: e.client,
		Refresher:   e.client,
		Journal:     e.submissionLog(),
	}

	log.Printf("API: %s", e.config.API.BaseURL)
	log.Printf("Language: %s", e.config.UI.Language)
	if e.journal == nil {
		log.Printf("Journal: disabled")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return app.Serve(ctx, e.config.UI.Addr)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "parelha.yaml", "Config file")
	rootCmd.PersistentFlags().String("api", "", "Base URL of the annotation API, overrides the config file")
	rootCmd.PersistentFlags().StringP("addr", "a", "", "Address to bind the webserver, overrides the config file")
	rootCmd.AddCommand(serveCmd)
}
