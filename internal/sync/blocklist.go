package sync

import (
	"context"

	"github.com/rs/zerolog/log"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/metrics"
	"tangled.org/arabica.social/barista/internal/reconcile"
)

// SyncBlocklists moves every configured account's personal blocks into the
// configured moderation lists, then unblocks. For each source account the
// current blocks are fetched fresh; each target list's owner adds the blocked
// DIDs as members (skipping those already present), and the source account
// unblocks each DID afterwards. The unblock is attempted regardless of the add
// outcome; add and unblock failures are reported separately.
func (r *Runner) SyncBlocklists(ctx context.Context) {
	for _, name := range r.cfg.AccountNames() {
		if err := r.syncAccountBlocks(ctx, name); err != nil {
			metrics.AccountsProcessedTotal.WithLabelValues("blocklist", metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to process account")
			continue
		}
		metrics.AccountsProcessedTotal.WithLabelValues("blocklist", metrics.StatusOK).Inc()
	}
}

func (r *Runner) syncAccountBlocks(ctx context.Context, name string) error {
	src, err := r.client(ctx, name)
	if err != nil {
		return err
	}

	log.Info().Str("account", name).Msg("fetching blocked accounts")
	blocks, err := src.GetBlocks(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("account", name).Int("blocks", len(blocks)).Msg("blocked accounts fetched")
	if len(blocks) == 0 {
		return nil
	}

	for _, target := range r.cfg.Lists {
		owner, err := r.client(ctx, target.Account)
		if err != nil {
			log.Error().Err(err).
				Str("owner", target.Account).
				Str("list", target.URL).
				Msg("failed to authenticate list owner")
			continue
		}

		listURI := bluesky.ListURIFromURL(owner.DID(), target.URL)

		// The server does not dedupe listitem records, so fetch the current
		// membership and skip subjects already on the list. If the membership
		// fetch fails we fall back to adding everything, matching the
		// at-least-once behavior of a first run.
		var observed []bluesky.ListMember
		if members, err := owner.GetListMembers(ctx, listURI); err != nil {
			log.Warn().Err(err).Str("list", target.URL).Msg("could not fetch list membership, adding without dedup")
		} else {
			observed = members
		}

		desired := make([]string, len(blocks))
		for i, b := range blocks {
			desired[i] = b.DID
		}
		existing := make([]string, len(observed))
		for i, m := range observed {
			existing[i] = m.SubjectDID
		}
		toAdd, _ := reconcile.Diff(desired, existing, func(did string) string { return did })
		addSet := make(map[string]struct{}, len(toAdd))
		for _, did := range toAdd {
			addSet[did] = struct{}{}
		}

		log.Info().
			Str("account", name).
			Str("list", target.URL).
			Str("owner", target.Account).
			Int("add", len(toAdd)).
			Int("present", len(blocks)-len(toAdd)).
			Msg("adding blocked accounts to list")

		for _, b := range blocks {
			if _, ok := addSet[b.DID]; !ok {
				metrics.ItemsTotal.WithLabelValues(metrics.OpListAdd, metrics.StatusSkipped).Inc()
			} else if _, err := owner.AddListItem(ctx, b.DID, listURI); err != nil {
				metrics.ItemsTotal.WithLabelValues(metrics.OpListAdd, metrics.StatusError).Inc()
				log.Error().Err(err).
					Str("handle", b.Handle).
					Str("did", b.DID).
					Str("list", target.URL).
					Msg("failed to add to list")
			} else {
				metrics.ItemsTotal.WithLabelValues(metrics.OpListAdd, metrics.StatusOK).Inc()
				log.Info().Str("handle", b.Handle).Str("did", b.DID).Msg("added to list")
			}

			// Unblock even when the add failed or was skipped; the block has
			// served its purpose once the subject is list-managed.
			if err := src.Unblock(ctx, b.DID); err != nil {
				metrics.ItemsTotal.WithLabelValues(metrics.OpUnblock, metrics.StatusError).Inc()
				log.Error().Err(err).
					Str("handle", b.Handle).
					Str("did", b.DID).
					Msg("failed to unblock")
			} else {
				metrics.ItemsTotal.WithLabelValues(metrics.OpUnblock, metrics.StatusOK).Inc()
			}
		}
	}

	return nil
}
