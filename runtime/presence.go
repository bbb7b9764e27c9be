package runtime

import (
	"context"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"messenger-lab/contract"
	"messenger-lab/domain"
	"messenger-lab/observability"
	"messenger-lab/protocol"
	"messenger-lab/repositories"
)

// Broadcaster recomputes the full user roster and pushes it to every
// live connection. Each broadcast is a full-state resend; overlapping
// broadcasts for rapid successive events are acceptable, last one wins.
type Broadcaster struct {
	log      *slog.Logger
	accounts repositories.IAccountRepository
	registry contract.ISessionRegistry
	monitor  *observability.Monitor
}

func NewBroadcaster(log *slog.Logger, accounts repositories.IAccountRepository,
	registry contract.ISessionRegistry, monitor *observability.Monitor) *Broadcaster {
	return &Broadcaster{log: log, accounts: accounts, registry: registry, monitor: monitor}
}

// BroadcastRoster reads all accounts, merges them with the session
// table and sends the resulting user list to every online connection.
// A store read failure aborts the cycle silently: the next trigger
// re-sends the full state anyway, so nothing is lost.
func (b *Broadcaster) BroadcastRoster(ctx context.Context) {
	accounts, err := b.accounts.ListAll()
	if err != nil {
		b.monitor.IncrStoreErrors()
		b.log.Error("roster broadcast aborted, account store unavailable", "error", err)
		return
	}

	sessions := b.registry.All()
	roster := lo.Map(accounts, func(a domain.Account, _ int) protocol.RosterEntry {
		_, online := sessions[a.ID]
		return protocol.RosterFromAccount(a, online)
	})
	// Deterministic order: two broadcasts with no state change in
	// between must produce identical payloads.
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Username < roster[j].Username
	})

	event := protocol.NewUserList(roster)
	for id, sink := range sessions {
		if err := sink.Send(ctx, event); err != nil {
			b.log.Debug("roster delivery failed", "user_id", id, "error", err)
		}
	}
	b.monitor.IncrBroadcasts()
}
