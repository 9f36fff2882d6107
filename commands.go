package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"promoshow/media"
	"promoshow/utils"
	"promoshow/viewer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loginUsername string
	loginPassword string
)

func registerCommands(root *cobra.Command) {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (defaults to $PROMOSHOW_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("username")

	root.AddCommand(loginCmd, logoutCmd, whoamiCmd, listCmd, shareCmd, downloadCmd, addCmd, deleteCmd, pruneCacheCmd)
}

// withApp bootstraps the app for a single command and tears it down after.
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	return run(ctx, a)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and cache the identity locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("PROMOSHOW_PASSWORD")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ok, err := a.session().Login(ctx, loginUsername, password)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("usuario o contraseña incorrectos")
			}
			cmd.Printf("signed in as %s\n", strings.TrimSpace(loginUsername))
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.session().Logout(ctx)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the cached identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			u := a.session().Restore(ctx)
			if u == nil {
				cmd.Println("not signed in")
				return nil
			}
			cmd.Printf("%s (%s) %s %s\n", u.Username, u.Role, u.FirstName, u.LastName)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List promotions in carousel order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			items, err := a.repo.LoadAll(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tCREATED\tURL")
			for i, p := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.URL)
			}
			return w.Flush()
		})
	},
}

var shareCmd = &cobra.Command{
	Use:   "share [position]",
	Short: "Share the promotion at position (1-based, default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return onScreen(ctx, cmd, a, args, a.screen.Share)
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [position]",
	Short: "Save the promotion at position into the export directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return onScreen(ctx, cmd, a, args, a.screen.Download)
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <image-file>",
	Short: "Upload a new promotion (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := utils.ValidateImageBytes(data); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			user := a.session().Restore(ctx)
			p, err := a.screen.Add(ctx, user, data)
			printNotices(cmd, a.feed)
			if err != nil {
				return err
			}
			cmd.Printf("created %s\n", p.ID)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a promotion and its image (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			user := a.session().Restore(ctx)
			if !user.IsAdmin() {
				return viewer.ErrNotAdmin
			}
			items, err := a.repo.LoadAll(ctx)
			if err != nil {
				return err
			}
			for _, p := range items {
				if p.ID == args[0] {
					err := a.screen.Remove(ctx, user, p)
					printNotices(cmd, a.feed)
					return err
				}
			}
			return fmt.Errorf("promotion %s not found", args[0])
		})
	},
}

var pruneCacheCmd = &cobra.Command{
	Use:   "prune-cache",
	Short: "Remove cached downloads older than CACHE_MAX_AGE",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		n, err := media.NewHTTPCache(cfg.CacheDir, cfg.FetchTimeout, logger).Prune(cfg.CacheMaxAge)
		if err != nil {
			return err
		}
		logger.Info("cache pruned", zap.Int("removed", n), zap.String("dir", cfg.CacheDir))
		return nil
	},
}

// onScreen loads the carousel, moves to the requested position and runs one
// media action on the promotion shown there.
func onScreen(ctx context.Context, cmd *cobra.Command, a *app, args []string, run func(context.Context) error) error {
	pos := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid position %q", args[0])
		}
		pos = n
	}

	if err := a.screen.Load(ctx); err != nil {
		printNotices(cmd, a.feed)
		return err
	}
	snap := a.screen.Snapshot()
	if pos > len(snap.Items) {
		return fmt.Errorf("position %d out of range (%d promotions)", pos, len(snap.Items))
	}
	for i := 1; i < pos; i++ {
		a.screen.Advance(viewer.Next)
	}

	err := run(ctx)
	printNotices(cmd, a.feed)
	return err
}

func printNotices(cmd *cobra.Command, feed *media.Feed) {
	for _, e := range feed.Recent() {
		cmd.Printf("[%s] %s: %s\n", e.Kind, e.Title, e.Message)
	}
}
