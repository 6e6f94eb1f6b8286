// Package alert notifies external destinations about notable ranking moves.
package alert

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// Mover is one ranking entry worth alerting about.
type Mover struct {
	Title  string           `json:"title"`
	Rank   int              `json:"rank"`
	Change trend.RankChange `json:"rank_change"`
	Peers  uint             `json:"peers"`
}

// Notification is the data sent to alert destinations.
type Notification struct {
	Title    string          `json:"title"`
	Category source.Category `json:"category"`
	Period   trend.Period    `json:"period"`
	Date     string          `json:"date"`
	Movers   []Mover         `json:"movers"`
}

// Rules decides which entries of a ranking produce alerts: new entries
// ranked TopN or better, and entries that climbed at least MinClimb places.
// A zero field disables that rule.
type Rules struct {
	TopN     int
	MinClimb int
}

// Detect returns the notification for ranking, or nil when nothing qualifies.
func (r Rules) Detect(ranking *trend.Ranking) *Notification {
	if ranking == nil {
		return nil
	}

	var movers []Mover
	for _, e := range ranking.Entries {
		isNew := r.TopN > 0 && e.RankChange.New && e.CurrentRank <= r.TopN
		climbed := r.MinClimb > 0 && !e.RankChange.New && e.RankChange.Delta >= r.MinClimb
		if !isNew && !climbed {
			continue
		}
		movers = append(movers, Mover{
			Title:  e.Title,
			Rank:   e.CurrentRank,
			Change: e.RankChange,
			Peers:  e.Peers,
		})
	}
	if len(movers) == 0 {
		return nil
	}

	heading := cases.Title(language.English)
	return &Notification{
		Title:    fmt.Sprintf("%s %s movers", heading.String(string(ranking.Category)), ranking.Period),
		Category: ranking.Category,
		Period:   ranking.Period,
		Date:     ranking.CurrentDate,
		Movers:   movers,
	}
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// moverLine is the one-line description shared by chat notifiers.
func moverLine(m Mover) string {
	if m.Change.New {
		return fmt.Sprintf("#%d %s (new, %s peers)", m.Rank, m.Title, formatPeers(m.Peers))
	}
	return fmt.Sprintf("#%d %s (up %d, %s peers)", m.Rank, m.Title, m.Change.Delta, formatPeers(m.Peers))
}
