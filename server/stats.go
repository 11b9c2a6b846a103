package server

import (
	"context"
	"github.com/pkg/errors"
	"go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"net/http"
)

//Stats records server measures. A nil *Stats is valid and records nothing.
type Stats struct {
	prometheusExporter *prometheus.Exporter
	mSocketRequest *stats.Int64Measure
	mSocketConnection *stats.Int64Measure
	mActiveMatches *stats.Int64Measure
	mActiveContexts *stats.Int64Measure
	mRoundsResolved *stats.Int64Measure
	mActionsRejected *stats.Int64Measure
	keyMode tag.Key
	keyReason tag.Key
}

func NewStatsHolder() (*Stats, error) {

	keyMode, err := tag.NewKey("mode")
	if err != nil {
		return nil, errors.Wrap(err, "mode tag key")
	}
	keyReason, err := tag.NewKey("reason")
	if err != nil {
		return nil, errors.Wrap(err, "reason tag key")
	}

	mSocketRequest := stats.Int64("standoff/socket_requests", "Socket Request Count", "By")
	mSocketConnection := stats.Int64("standoff/socket_connection", "Socket Connection Count", "By")
	mActiveMatches := stats.Int64("standoff/active_matches", "Active Match Count", "1")
	mActiveContexts := stats.Int64("standoff/active_contexts", "Allocated Execution Context Count", "1")
	mRoundsResolved := stats.Int64("standoff/rounds_resolved", "Resolved Round Count", "1")
	mActionsRejected := stats.Int64("standoff/actions_rejected", "Rejected Action Count", "1")

	views := []*view.View{
		{
			Name: "standoff/socket_requests_sum",
			Measure: mSocketRequest,
			Description: "The number of total socket request",
			Aggregation: view.Sum(),
		},
		{
			Name: "standoff/socket_connection_sum",
			Measure: mSocketConnection,
			Description: "The number of open socket connection",
			Aggregation: view.Sum(),
		},
		{
			Name: "standoff/active_matches",
			Measure: mActiveMatches,
			Description: "The number of matches in session registry",
			Aggregation: view.LastValue(),
		},
		{
			Name: "standoff/active_contexts",
			Measure: mActiveContexts,
			Description: "The number of allocated match contexts",
			Aggregation: view.LastValue(),
		},
		{
			Name: "standoff/rounds_resolved_count",
			Measure: mRoundsResolved,
			Description: "The number of resolved rounds",
			TagKeys: []tag.Key{keyMode},
			Aggregation: view.Count(),
		},
		{
			Name: "standoff/actions_rejected_count",
			Measure: mActionsRejected,
			Description: "The number of rejected action submissions",
			TagKeys: []tag.Key{keyReason},
			Aggregation: view.Count(),
		},
	}

	if err := view.Register(views...); err != nil {
		return nil, errors.Wrap(err, "Error while registering stat views")
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "standoff",
	})
	if err != nil {
		return nil, errors.Wrap(err, "Error while creating new prometheus exporter")
	}

	view.RegisterExporter(pe)

	return &Stats{
		prometheusExporter: pe,
		mSocketRequest: mSocketRequest,
		mSocketConnection: mSocketConnection,
		mActiveMatches: mActiveMatches,
		mActiveContexts: mActiveContexts,
		mRoundsResolved: mRoundsResolved,
		mActionsRejected: mActionsRejected,
		keyMode: keyMode,
		keyReason: keyReason,
	}, nil

}

//Handler serves prometheus scrape requests
func (s *Stats) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.prometheusExporter
}

func (s *Stats) IncrSocketRequest(){
	if s == nil {
		return
	}
	stats.Record(context.Background(), s.mSocketRequest.M(1))
}

func (s *Stats) IncrSocketConnection(){
	if s == nil {
		return
	}
	stats.Record(context.Background(), s.mSocketConnection.M(1))
}

func (s *Stats) DecrSocketConnection(){
	if s == nil {
		return
	}
	stats.Record(context.Background(), s.mSocketConnection.M(-1))
}

func (s *Stats) SetActiveMatches(count int){
	if s == nil {
		return
	}
	stats.Record(context.Background(), s.mActiveMatches.M(int64(count)))
}

func (s *Stats) SetActiveContexts(count int){
	if s == nil {
		return
	}
	stats.Record(context.Background(), s.mActiveContexts.M(int64(count)))
}

func (s *Stats) IncrRoundResolved(mode string){
	if s == nil {
		return
	}
	ctx, err := tag.New(context.Background(), tag.Upsert(s.keyMode, mode))
	if err != nil {
		return
	}
	stats.Record(ctx, s.mRoundsResolved.M(1))
}

func (s *Stats) IncrActionRejected(reason string){
	if s == nil {
		return
	}
	ctx, err := tag.New(context.Background(), tag.Upsert(s.keyReason, reason))
	if err != nil {
		return
	}
	stats.Record(ctx, s.mActionsRejected.M(1))
}
