// Command stockflow is a small CLI over the SDK: log in, inspect the
// session, list entities, log out. It doubles as a living example of how
// to wire the client, the session store and the auth façade together.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stockflowhq/stockflow-go/auth"
	"github.com/stockflowhq/stockflow-go/client"
	"github.com/stockflowhq/stockflow-go/entity"
	"github.com/stockflowhq/stockflow-go/internal/config"
	apperrors "github.com/stockflowhq/stockflow-go/internal/errors"
	"github.com/stockflowhq/stockflow-go/internal/utils"
	"github.com/stockflowhq/stockflow-go/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()

	root := &cobra.Command{
		Use:           "stockflow",
		Short:         "StockFlow inventory API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newListCmd(cfg),
	)
	return root
}

// wire builds the client/store/auth triple every command needs.
func wire(cfg config.Config) (*client.Client, *auth.Service, error) {
	store, err := session.NewFileStore(cfg.DataFolder())
	if err != nil {
		return nil, nil, err
	}

	level := zerolog.WarnLevel
	if cfg.Verbose() {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	api, err := client.New(client.Config{
		BaseURL:  cfg.BaseURL(),
		Sessions: store,
		Timeout:  cfg.Timeout(),
		Logger:   utils.Ptr(logger),
	})
	if err != nil {
		return nil, nil, err
	}

	authService, err := auth.New(api, store, auth.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return api, authService, nil
}

func newLoginCmd(cfg config.Config) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the API and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, authService, err := wire(cfg)
			if err != nil {
				return err
			}

			figure.NewFigure(cfg.AppName(), "cybermedium", true).Print()
			fmt.Println()

			reader := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Print("Username: ")
				username, err = readLine(reader)
				if err != nil {
					return err
				}
			}
			fmt.Print("Password: ")
			password, err := readLine(reader)
			if err != nil {
				return err
			}

			result, err := authService.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("%w: %s", apperrors.ErrLoginRejected, result.Error)
			}
			fmt.Printf("Logged in as %s (%s)\n", result.User.FullName, result.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username to log in with")
	return cmd
}

func newLogoutCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session and notify the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, authService, err := wire(cfg)
			if err != nil {
				return err
			}
			if err := authService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, authService, err := wire(cfg)
			if err != nil {
				return err
			}
			profile := authService.Restore(cmd.Context())
			if profile == nil {
				return apperrors.ErrNotAuthenticated
			}
			return printJSON(profile)
		},
	}
}

func newListCmd(cfg config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List records of an entity kind, e.g. `stockflow list Product`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := wire(cfg)
			if err != nil {
				return err
			}

			params := client.Record{}
			if limit > 0 {
				params["limit"] = limit
			}
			records, err := api.Entity(entity.Kind(args[0])).List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records")
	return cmd
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
