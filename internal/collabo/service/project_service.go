package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/llm"
	"github.com/connecta/collabo-backend/internal/logging"
)

// ProjectService owns the project lifecycle: creation, scoping, funding and activation.
type ProjectService struct {
	store    domain.Store
	scoper   llm.Scoper
	gateway  PaymentGateway
	events   EventPublisher
	cfg      config.CollaboConfig
	currency string
	now      clock
}

func NewProjectService(
	store domain.Store,
	scoper llm.Scoper,
	gateway PaymentGateway,
	events EventPublisher,
	cfg config.CollaboConfig,
	currency string,
) *ProjectService {
	return &ProjectService{
		store:    store,
		scoper:   scoper,
		gateway:  gateway,
		events:   events,
		cfg:      cfg,
		currency: currency,
		now:      utcNow,
	}
}

// Create persists the project, one open role per role spec and the workspace
// with its General channel. In strict mode the writes commit together.
func (s *ProjectService) Create(ctx context.Context, clientID string, req domain.CreateProjectRequest) (*domain.CreatedProject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	project := &domain.Project{
		ID:               uuid.New().String(),
		ClientID:         clientID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		TotalBudget:      req.TotalBudget,
		Status:           domain.ProjectPlanning,
		Milestones:       req.Milestones,
		RecommendedStack: req.RecommendedStack,
		Risks:            req.Risks,
		Category:         req.Category,
		Niche:            req.Niche,
		ProjectType:      req.ProjectType,
		Scope:            req.Scope,
		Duration:         req.Duration,
		DurationType:     req.DurationType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, spec := range req.Roles {
		skills := spec.Skills
		if skills == nil {
			skills = []string{}
		}
		roles = append(roles, domain.Role{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			Title:       strings.TrimSpace(spec.Title),
			Description: spec.Description,
			Budget:      spec.Budget,
			Skills:      skills,
			Status:      domain.RoleOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	workspace := newWorkspace(project.ID, now)

	err := s.store.Atomic(ctx, func(tx domain.Repository) error {
		if err := tx.InsertProject(ctx, project); err != nil {
			return err
		}
		if err := tx.InsertRoles(ctx, roles); err != nil {
			return err
		}
		err := tx.InsertWorkspace(ctx, workspace)
		if errors.Is(err, domain.ErrWorkspaceExists) {
			// the reconciler got there first; adopt its workspace
			existing, gerr := tx.GetWorkspaceByProject(ctx, project.ID)
			if gerr != nil {
				return gerr
			}
			workspace = existing
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	project.WorkspaceID = workspace.ID
	logging.FromContext(ctx).Info("collabo project created",
		zap.String("project_id", project.ID),
		zap.String("workspace_id", workspace.ID),
		zap.Int("roles", len(roles)),
	)
	return &domain.CreatedProject{Project: project, Roles: roles, Workspace: workspace}, nil
}

// Fund opens a checkout session for the full project budget. The project
// itself is not modified.
func (s *ProjectService) Fund(ctx context.Context, projectID, userID string) (*domain.FundResult, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, domain.ErrForbidden
	}
	if project.TotalBudget <= 0 {
		return nil, domain.Invalid("invalid project budget")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payment := &domain.Payment{
		ID:               uuid.New().String(),
		CollaboProjectID: project.ID,
		PayerID:          userID,
		PayeeID:          userID, // held in platform escrow until roles are paid out
		Amount:           project.TotalBudget,
		Currency:         s.currency,
		PlatformFee:      0,
		NetAmount:        project.TotalBudget,
		PaymentType:      "full_payment",
		Description:      "Funding for Collabo Project: " + project.Title,
		Status:           domain.PaymentPending,
		EscrowStatus:     domain.EscrowHeld,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.InsertPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	session, err := s.gateway.InitializePayment(ctx, domain.CheckoutRequest{
		Reference:   payment.ID,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Email:       user.Email,
		Description: payment.Description,
		Metadata: map[string]string{
			"collabo_project_id": project.ID,
			"type":               "collabo_funding",
		},
	})
	if err != nil {
		if serr := s.store.SetPaymentStatus(ctx, payment.ID, domain.PaymentFailed); serr != nil {
			logging.FromContext(ctx).Error("mark payment failed", zap.String("payment_id", payment.ID), zap.Error(serr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrFundingFailed, err)
	}

	if err := s.store.SetPaymentReference(ctx, payment.ID, session.GatewayReference); err != nil {
		return nil, fmt.Errorf("save payment reference: %w", err)
	}

	return &domain.FundResult{
		PaymentID:   payment.ID,
		CheckoutURL: session.URL,
		Reference:   session.GatewayReference,
	}, nil
}

// ConfirmFunding asks the gateway for the outcome of a checkout and records it
// on the payment. Only the payer may confirm.
func (s *ProjectService) ConfirmFunding(ctx context.Context, reference, userID string) (*domain.Payment, error) {
	payment, err := s.store.GetPayment(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.PayerID != userID {
		return nil, domain.ErrForbidden
	}
	if payment.Status == domain.PaymentSuccessful {
		return payment, nil
	}

	v, err := s.gateway.VerifyPayment(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentUnconfirmed, err)
	}

	status := v.Status
	if status == domain.PaymentSuccessful && (v.Amount < payment.Amount || !strings.EqualFold(v.Currency, payment.Currency)) {
		logging.FromContext(ctx).Warn("payment amount mismatch",
			zap.String("payment_id", payment.ID),
			zap.Float64("expected", payment.Amount),
			zap.Float64("paid", v.Amount),
			zap.String("currency", v.Currency),
		)
		status = domain.PaymentFailed
	}
	if status == domain.PaymentPending {
		return nil, fmt.Errorf("%w: payment still pending", domain.ErrPaymentUnconfirmed)
	}

	if err := s.store.SetPaymentStatus(ctx, payment.ID, status); err != nil {
		return nil, err
	}
	payment.Status = status
	if status != domain.PaymentSuccessful {
		return payment, fmt.Errorf("%w: payment %s", domain.ErrPaymentUnconfirmed, status)
	}
	return payment, nil
}

// Activate moves the project to active and queues role matching. A failure to
// queue matching is logged and does not fail activation.
func (s *ProjectService) Activate(ctx context.Context, projectID string) (*domain.Project, error) {
	if s.cfg.ActivationRequiresFunding {
		if _, err := s.store.GetProject(ctx, projectID); err != nil {
			return nil, err
		}
		funded, err := s.store.HasSuccessfulPayment(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if !funded {
			return nil, domain.ErrNotFunded
		}
	}

	project, err := s.store.SetProjectStatus(ctx, projectID, domain.ProjectActive)
	if err != nil {
		return nil, err
	}

	if err := s.events.Enqueue(ctx, domain.EventProjectActivated, domain.ProjectActivatedPayload{ProjectID: project.ID}); err != nil {
		logging.FromContext(ctx).Error("queue auto-invite", zap.String("project_id", project.ID), zap.Error(err))
	}
	return project, nil
}

func (s *ProjectService) GetProjectDetails(ctx context.Context, projectID string) (*domain.ProjectDetails, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	roles, err := s.store.ListRoles(ctx, projectID, "")
	if err != nil {
		return nil, err
	}
	workspace, err := s.store.GetWorkspaceByProject(ctx, projectID)
	if err != nil && !errors.Is(err, domain.ErrWorkspaceNotFound) {
		return nil, err
	}
	return &domain.ProjectDetails{Project: project, Roles: roles, Workspace: workspace}, nil
}

// ListClientProjects returns the client's projects, newest first.
func (s *ProjectService) ListClientProjects(ctx context.Context, clientID string) ([]domain.Project, error) {
	return s.store.ListProjectsByClient(ctx, clientID)
}

func newWorkspace(projectID string, now time.Time) *domain.Workspace {
	return &domain.Workspace{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Channels:  []domain.Channel{{Name: domain.DefaultChannel, RoleIDs: []string{}}},
		CreatedAt: now,
	}
}
