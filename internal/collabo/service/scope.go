package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/llm"
	"github.com/connecta/collabo-backend/internal/logging"
)

const (
	fallbackBudget   = 1000
	fallbackTimeline = "4 weeks"
)

// FallbackProposal is returned whenever the model cannot produce a usable
// proposal, so the client can still fill in the project by hand.
func FallbackProposal() *domain.ScopeProposal {
	return &domain.ScopeProposal{
		Roles: []domain.RoleSpec{{
			Title:       "Full Stack Developer",
			Description: "Core development",
			Budget:      fallbackBudget,
			Skills:      []string{"JavaScript"},
			Count:       1,
		}},
		TotalEstimatedBudget: fallbackBudget,
		Timeline:             fallbackTimeline,
		Milestones:           []domain.Milestone{},
		RecommendedStack:     []string{},
		Risks:                []string{},
	}
}

// Scope turns a free-text idea into a proposal. Collaborator failures degrade
// to FallbackProposal; only an empty description is an error.
func (s *ProjectService) Scope(ctx context.Context, description string) (*domain.ScopeProposal, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.Invalid("description is required")
	}

	log := logging.FromContext(ctx)
	proposal := s.propose(ctx, log, description)
	for i := range proposal.Roles {
		proposal.Roles[i].ID = uuid.New().String()
	}
	return proposal, nil
}

func (s *ProjectService) propose(ctx context.Context, log *zap.Logger, description string) *domain.ScopeProposal {
	if s.scoper == nil {
		return FallbackProposal()
	}

	raw, err := s.scoper.ScopeProject(ctx, description)
	if err != nil {
		log.Warn("scoping failed, using fallback proposal", zap.Error(err))
		return FallbackProposal()
	}

	proposal, err := llm.ParseProposal(raw)
	if err != nil {
		log.Warn("unparseable scoping reply, using fallback proposal", zap.Error(err), zap.Int("reply_len", len(raw)))
		return FallbackProposal()
	}
	return normalizeProposal(proposal)
}

// normalizeProposal guarantees at least one titled role, a positive budget
// and a timeline.
func normalizeProposal(p *domain.ScopeProposal) *domain.ScopeProposal {
	roles := make([]domain.RoleSpec, 0, len(p.Roles))
	for _, r := range p.Roles {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		if r.Budget < 0 {
			r.Budget = 0
		}
		if r.Count <= 0 {
			r.Count = 1
		}
		if r.Skills == nil {
			r.Skills = []string{}
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		roles = FallbackProposal().Roles
	}
	p.Roles = roles

	if p.TotalEstimatedBudget <= 0 {
		var sum float64
		for _, r := range roles {
			sum += r.Budget * float64(r.Count)
		}
		p.TotalEstimatedBudget = sum
	}
	if p.TotalEstimatedBudget <= 0 {
		p.TotalEstimatedBudget = fallbackBudget
	}

	if strings.TrimSpace(p.Timeline) == "" {
		p.Timeline = fallbackTimeline
	}
	if p.Milestones == nil {
		p.Milestones = []domain.Milestone{}
	}
	if p.RecommendedStack == nil {
		p.RecommendedStack = []string{}
	}
	if p.Risks == nil {
		p.Risks = []string{}
	}
	return p
}
