package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/library"
	"github.com/alexwlchan/blink/internal/reconcile"
	"github.com/alexwlchan/blink/internal/review"
	"github.com/alexwlchan/blink/internal/search"
	"github.com/alexwlchan/blink/internal/store"
)

// withStore runs fn against the configured library
func withStore(cmd *cobra.Command, fn func(ctx context.Context, a *app, s *store.PhotoStore) error) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	return fn(ctx, a, s)
}

func newSeedCmd() *cobra.Command {
	var count int
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add synthetic photos to the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				if seed == 0 {
					seed = time.Now().UnixNano()
				}
				added, err := s.Seed(ctx, rand.New(rand.NewSource(seed)), count)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d photos to %s\n", len(added), a.cfg.Library.Path)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 200, "number of photos to add")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				snap, err := reconcile.New(s, a.logger).FullReload(ctx)
				if err != nil {
					return err
				}
				st := library.StatisticsOf(snap)

				tbl := table.New("State", "Photos").WithWriter(cmd.OutOrStdout())
				tbl.AddRow(domain.StateApproved.AlbumName(), st.Approved)
				tbl.AddRow(domain.StateRejected.AlbumName(), st.Rejected)
				tbl.AddRow(domain.StateNeedsAction.AlbumName(), st.NeedsAction)
				tbl.AddRow("Unreviewed", st.Unreviewed())
				tbl.AddRow("Favorites", st.Favorites)
				tbl.Print()

				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), st.String())
				return nil
			})
		},
	}
}

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <id> <approved|rejected|needs-action|none>",
		Short: "Set the review state of a photo",
		Long:  "Set the review state of a photo, removing it from any other review album.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AssetID(args[0])
			state, err := domain.ParseReviewState(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				snap, err := reconcile.New(s, a.logger).FullReload(ctx)
				if err != nil {
					return err
				}
				if !snap.Contains(id) {
					return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
				}
				if changes := review.Exclusive(id, snap, state); len(changes) > 0 {
					if err := s.UpdateMembership(ctx, id, changes); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, state)
				return nil
			})
		},
	}
}

func newFavoriteCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark a photo as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				return s.SetFavorite(ctx, domain.AssetID(args[0]), !off)
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "remove the favorite flag instead")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Delete photos from the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.AssetID, len(args))
			for i, arg := range args {
				ids[i] = domain.AssetID(arg)
			}
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				if err := s.Remove(ctx, ids...); err != nil {
					return err
				}
				if len(ids) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), "Removed 1 photo")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d photos\n", len(ids))
				}
				return nil
			})
		},
	}
}

func newFindCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find photos by filename, glob or identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, s *store.PhotoStore) error {
				snap, err := reconcile.New(s, a.logger).FullReload(ctx)
				if err != nil {
					return err
				}
				matches := search.NewIndex(snap.Assets()).Search(args[0], limit)
				if len(matches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "(no matches)")
					return nil
				}

				tbl := table.New("#", "Filename", "Taken", "State", "ID").WithWriter(cmd.OutOrStdout())
				for _, m := range matches {
					tbl.AddRow(
						strconv.Itoa(m.Index+1),
						m.Asset.Filename,
						m.Asset.CreatedAt.Local().Format("2006-01-02 15:04"),
						review.Resolve(m.Asset.ID, snap),
						m.Asset.ID,
					)
				}
				tbl.Print()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of matches")
	return cmd
}
