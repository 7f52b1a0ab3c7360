package sync

import (
	"context"

	"github.com/rs/zerolog/log"

	"tangled.org/arabica.social/barista/internal/lexicons"
	"tangled.org/arabica.social/barista/internal/metrics"
	"tangled.org/arabica.social/barista/internal/reconcile"
)

// SyncPreferences merges muted words and labeler subscriptions across all
// configured accounts and writes the merged blocks back to each one. Muted
// words deduplicate by (value, targets, actorTarget), labelers by DID. Every
// other preference block is preserved verbatim and in its original relative
// order; only accounts whose preferences were readable in the first pass are
// written in the second.
func (r *Runner) SyncPreferences(ctx context.Context) {
	var words []lexicons.MutedWord
	var labelers []lexicons.Labeler
	var reached []string

	for _, name := range r.cfg.AccountNames() {
		c, err := r.client(ctx, name)
		if err != nil {
			metrics.AccountsProcessedTotal.WithLabelValues("preferences", metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to process account")
			continue
		}

		log.Info().Str("account", name).Msg("fetching preferences")
		prefs, err := c.GetPreferences(ctx)
		if err != nil {
			metrics.AccountsProcessedTotal.WithLabelValues("preferences", metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to fetch preferences")
			continue
		}

		words = append(words, collectMutedWords(prefs)...)
		labelers = append(labelers, collectLabelers(prefs)...)
		reached = append(reached, name)
	}

	words = reconcile.Dedupe(words, lexicons.MutedWord.Key)
	labelers = reconcile.Dedupe(labelers, func(l lexicons.Labeler) string { return l.DID })
	log.Info().
		Int("muted_words", len(words)).
		Int("labelers", len(labelers)).
		Msg("merged preference sets computed")

	mutedPref, err := lexicons.NewPreference(lexicons.NewMutedWordsPref(words))
	if err != nil {
		log.Error().Err(err).Msg("failed to encode merged muted words")
		return
	}
	labelersPref, err := lexicons.NewPreference(lexicons.NewLabelersPref(labelers))
	if err != nil {
		log.Error().Err(err).Msg("failed to encode merged labelers")
		return
	}

	for _, name := range reached {
		c, err := r.client(ctx, name)
		if err != nil {
			metrics.PreferenceWritesTotal.WithLabelValues(metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to process account")
			continue
		}

		// Re-fetch so concurrent account-side edits to unmanaged blocks are
		// not clobbered by a stale snapshot from the first pass.
		prefs, err := c.GetPreferences(ctx)
		if err != nil {
			metrics.PreferenceWritesTotal.WithLabelValues(metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to fetch preferences")
			continue
		}

		merged := MergePreferences(prefs, mutedPref, labelersPref)

		log.Info().Str("account", name).Msg("saving preferences")
		if err := c.PutPreferences(ctx, merged); err != nil {
			metrics.PreferenceWritesTotal.WithLabelValues(metrics.StatusError).Inc()
			log.Error().Err(err).Str("account", name).Msg("failed to save preferences")
			continue
		}
		metrics.PreferenceWritesTotal.WithLabelValues(metrics.StatusOK).Inc()
	}
}

// MergePreferences rewrites a preference sequence: blocks whose $type matches a
// managed block are dropped, everything else keeps its relative order, and the
// managed blocks are appended at the end, each exactly once.
func MergePreferences(prefs []lexicons.Preference, managed ...lexicons.Preference) []lexicons.Preference {
	managedTypes := make(map[string]struct{}, len(managed))
	for _, m := range managed {
		managedTypes[m.Type] = struct{}{}
	}

	out := make([]lexicons.Preference, 0, len(prefs)+len(managed))
	for _, p := range prefs {
		if _, ok := managedTypes[p.Type]; ok {
			continue
		}
		out = append(out, p)
	}
	return append(out, managed...)
}

func collectMutedWords(prefs []lexicons.Preference) []lexicons.MutedWord {
	for _, p := range prefs {
		if p.Type != lexicons.PrefTypeMutedWords {
			continue
		}
		var block lexicons.MutedWordsPref
		if err := p.Decode(&block); err != nil {
			log.Warn().Err(err).Msg("skipping malformed muted words block")
			return nil
		}
		return block.Items
	}
	return nil
}

func collectLabelers(prefs []lexicons.Preference) []lexicons.Labeler {
	for _, p := range prefs {
		if p.Type != lexicons.PrefTypeLabelers {
			continue
		}
		var block lexicons.LabelersPref
		if err := p.Decode(&block); err != nil {
			log.Warn().Err(err).Msg("skipping malformed labelers block")
			return nil
		}
		return block.Labelers
	}
	return nil
}
