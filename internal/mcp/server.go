package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"deepthink/internal/history"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/tracker"
	"deepthink/internal/values"
)

// Service is the part of the tracker the tools read from.
type Service interface {
	RankDecision(ctx context.Context, id string) ([]scoring.ScoredOption, error)
	ListDecisions(ctx context.Context, status store.DecisionStatus) ([]store.Decision, error)
	ListGoals(ctx context.Context, status store.GoalStatus) ([]store.Goal, error)
	GoalHistory(ctx context.Context, goalID string) ([]history.Entry, error)
	DecisionHistory(ctx context.Context, decisionID string) ([]history.Entry, error)
	ValuesReport(ctx context.Context, n int) (tracker.ValuesReport, error)
}

var _ Service = (*tracker.Tracker)(nil)

type Server struct {
	svc    Service
	advice values.AdviceSource
	mcp    *sdk.Server
}

func NewServer(svc Service, advice values.AdviceSource, version string) *Server {
	s := &Server{
		svc:    svc,
		advice: advice,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "deepthink",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
