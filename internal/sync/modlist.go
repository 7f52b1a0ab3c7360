package sync

import (
	"context"

	"github.com/rs/zerolog/log"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/metrics"
	"tangled.org/arabica.social/barista/internal/reconcile"
)

// SyncModlists cross-subscribes every configured account to the union of
// moderation lists any of them block-subscribes to. Lists are deduplicated by
// URI. Accounts are only ever subscribed to missing lists; nothing is
// unsubscribed.
func (r *Runner) SyncModlists(ctx context.Context) {
	type accountState struct {
		name   string
		client Client
		lists  []bluesky.ModList
	}

	var states []accountState
	var union []bluesky.ModList

	for _, name := range r.cfg.AccountNames() {
		c, err := r.client(ctx, name)
		if err != nil {
			metrics.AccountsProcessedTotal.WithLabelValues("modlist", metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to process account")
			continue
		}

		log.Info().Str("account", name).Msg("fetching moderation lists")
		lists, err := c.GetListBlocks(ctx)
		if err != nil {
			metrics.AccountsProcessedTotal.WithLabelValues("modlist", metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to fetch moderation lists")
			continue
		}

		states = append(states, accountState{name: name, client: c, lists: lists})
		union = append(union, lists...)
	}

	union = reconcile.Dedupe(union, func(l bluesky.ModList) string { return l.URI })
	log.Info().Int("lists", len(union)).Msg("moderation list union computed")

	for _, st := range states {
		missing, _ := reconcile.Diff(union, st.lists, func(l bluesky.ModList) string { return l.URI })
		if len(missing) == 0 {
			log.Info().Str("account", st.name).Msg("no new lists to block")
			metrics.AccountsProcessedTotal.WithLabelValues("modlist", metrics.StatusOK).Inc()
			continue
		}

		for _, list := range missing {
			if err := st.client.BlockList(ctx, list.URI); err != nil {
				metrics.ItemsTotal.WithLabelValues(metrics.OpSubscribe, metrics.StatusError).Inc()
				log.Error().Err(err).
					Str("account", st.name).
					Str("list", list.Name).
					Str("uri", list.URI).
					Msg("failed to block list")
				continue
			}
			metrics.ItemsTotal.WithLabelValues(metrics.OpSubscribe, metrics.StatusOK).Inc()
			log.Info().Str("account", st.name).Str("list", list.Name).Msg("blocked list")
		}
		metrics.AccountsProcessedTotal.WithLabelValues("modlist", metrics.StatusOK).Inc()
	}
}
