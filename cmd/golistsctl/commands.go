package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"golists/internal/config"
	"golists/internal/db"
	"golists/internal/logger"
	"golists/internal/models"
)

// Store is what the maintenance commands touch. *db.DB implements it.
type Store interface {
	ReconcileCounters(ctx context.Context) (db.ReconcileResult, error)
	GetModerationStats(ctx context.Context) (db.ModerationStats, error)
	GetBadWords(ctx context.Context) ([]string, error)
	AddBadWord(ctx context.Context, word string) error
	RemoveBadWord(ctx context.Context, word string) (bool, error)
	GetRateLimits(ctx context.Context) (models.RateLimits, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error
	GetTrustScore(ctx context.Context, userID uuid.UUID, floor int) (models.TrustScore, error)
	ListPenalties(ctx context.Context, userID uuid.UUID) ([]models.PenaltyRecord, error)
}

// app carries what every command shares. store is opened lazily so that
// argument errors never need a database.
type app struct {
	cfg   *config.Config
	db    *db.DB
	store Store
}

func (a *app) open(cmd *cobra.Command) error {
	if a.cfg == nil {
		a.cfg = config.Load()
	}
	if a.store != nil {
		return nil
	}

	database, err := db.New(cmd.Context(), a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db, a.store = database, database
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "golistsctl",
		Short:         "Maintenance commands for the golists suggestion and moderation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newReconcileCmd(a),
		newStatsCmd(a),
		newBadWordsCmd(a),
		newRateLimitsCmd(a),
		newUsersCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				return errors.New("migrate needs a database connection")
			}
			if err := a.db.RunMigrations(a.cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute helpful and report counters from the vote and report tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(a.cfg.Env, a.cfg.LogLevel)
			result, err := a.store.ReconcileCounters(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().
				Int64("vote_counters", result.VoteCounters).
				Int64("report_counters", result.ReportCounters).
				Msg("counters reconciled")
			fmt.Fprintf(cmd.OutOrStdout(), "fixed %d vote counters, %d report counters\n", result.VoteCounters, result.ReportCounters)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show moderation queue depths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.store.GetModerationStats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "pending suggestions\t%d\n", stats.PendingSuggestions)
			fmt.Fprintf(w, "open reports\t%d\n", stats.OpenReports)
			fmt.Fprintf(w, "flagged comments\t%d\n", stats.FlaggedComments)
			return w.Flush()
		},
	}
}

func newBadWordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badwords",
		Short: "Manage the content filter word list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List bad words",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				words, err := a.store.GetBadWords(cmd.Context())
				if err != nil {
					return err
				}
				for _, w := range words {
					fmt.Fprintln(cmd.OutOrStdout(), w)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add WORD...",
			Short: "Add bad words",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, word := range args {
					if err := a.store.AddBadWord(cmd.Context(), word); err != nil {
						return fmt.Errorf("add %q: %w", word, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d word(s)\n", len(args))
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove WORD",
			Short: "Remove a bad word",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				removed, err := a.store.RemoveBadWord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("bad word %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", strings.ToLower(strings.TrimSpace(args[0])))
				return nil
			},
		},
	)
	return cmd
}

func newRateLimitsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimits",
		Short: "Show the submission cooldowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := a.store.GetRateLimits(cmd.Context())
			if err != nil {
				return err
			}
			optional := func(v *int) string {
				if v == nil {
					return "off"
				}
				return fmt.Sprintf("%dm", *v)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "per target\t%dm\n", limits.PerTargetMinutes)
			fmt.Fprintf(w, "global\t%s\n", optional(limits.GlobalMinutes))
			fmt.Fprintf(w, "after rejection\t%s\n", optional(limits.RejectedCooldownMinutes))
			return w.Flush()
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and administer users",
	}

	lookup := func(cmd *cobra.Command, username string) (*models.User, error) {
		user, err := a.store.GetUserByUsername(cmd.Context(), username)
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("user %q not found", username)
		}
		return user, err
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "trust USERNAME",
			Short: "Show a user's trust score",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := lookup(cmd, args[0])
				if err != nil {
					return err
				}
				score, err := a.store.GetTrustScore(cmd.Context(), user.ID, a.cfg.TrustScoreFloor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d (%d penalties)\n", user.Username, score.Score, score.Penalties)
				return nil
			},
		},
		&cobra.Command{
			Use:   "penalties USERNAME",
			Short: "List a user's penalties, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := lookup(cmd, args[0])
				if err != nil {
					return err
				}
				penalties, err := a.store.ListPenalties(cmd.Context(), user.ID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "WHEN\tACTION\tSCORE\tCOMMENT")
				for _, p := range penalties {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.CreatedAt.Format("2006-01-02 15:04"), p.Action, p.Score, p.RelatedCommentID)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "set-role USERNAME ROLE",
			Short: "Change a user's role (user, moderator, admin)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !models.ValidRole(args[1]) {
					return fmt.Errorf("invalid role %q", args[1])
				}
				user, err := lookup(cmd, args[0])
				if err != nil {
					return err
				}
				if err := a.store.UpdateUserRole(cmd.Context(), user.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Username, args[1])
				return nil
			},
		},
	)
	return cmd
}
