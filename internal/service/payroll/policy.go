package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/domain/store"
	"github.com/albamate/albamate-backend/internal/domain/user"
)

type PolicyServiceImpl struct {
	payroll.PolicyRepository
	store.StoreRepository
	authz user.AuthorizationChecker
	now   func() time.Time
}

func NewPolicyService(policyRepo payroll.PolicyRepository, storeRepo store.StoreRepository, authz user.AuthorizationChecker) payroll.PolicyService {
	return &PolicyServiceImpl{
		PolicyRepository: policyRepo,
		StoreRepository:  storeRepo,
		authz:            authz,
		now:              time.Now,
	}
}

// GetPolicy implements payroll.PolicyService.
func (s *PolicyServiceImpl) GetPolicy(ctx context.Context, storeID string) (payroll.PolicyResponse, error) {
	if _, err := s.StoreRepository.GetLocation(ctx, storeID); err != nil {
		return payroll.PolicyResponse{}, err
	}

	policy, err := s.PolicyRepository.Get(ctx, storeID)
	if err == nil {
		return payroll.NewPolicyResponse(policy), nil
	}
	if !errors.Is(err, payroll.ErrPolicyNotFound) {
		return payroll.PolicyResponse{}, fmt.Errorf("failed to get payroll policy: %w", err)
	}

	// First access: persist the default so later reads are stable.
	policy = payroll.DefaultPolicy(storeID)
	policy.CreatedAt = s.now().UTC()
	policy.UpdatedAt = policy.CreatedAt
	saved, err := s.PolicyRepository.Upsert(ctx, policy)
	if err != nil {
		return payroll.PolicyResponse{}, fmt.Errorf("failed to save default payroll policy: %w", err)
	}

	slog.Info("default payroll policy created", "store_id", storeID)
	return payroll.NewPolicyResponse(saved), nil
}

// UpdatePolicy implements payroll.PolicyService.
func (s *PolicyServiceImpl) UpdatePolicy(ctx context.Context, storeID string, req payroll.UpdatePolicyRequest) (payroll.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PolicyResponse{}, err
	}

	if _, err := s.StoreRepository.GetLocation(ctx, storeID); err != nil {
		return payroll.PolicyResponse{}, err
	}

	if err := requireStoreMaster(ctx, s.authz, storeID); err != nil {
		return payroll.PolicyResponse{}, err
	}

	current, err := effectivePolicy(ctx, s.PolicyRepository, storeID)
	if err != nil {
		return payroll.PolicyResponse{}, err
	}

	updated := req.Apply(current)
	updated.UpdatedAt = s.now().UTC()
	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = updated.UpdatedAt
	}

	saved, err := s.PolicyRepository.Upsert(ctx, updated)
	if err != nil {
		return payroll.PolicyResponse{}, fmt.Errorf("failed to update payroll policy: %w", err)
	}

	slog.Info("payroll policy updated",
		"store_id", storeID,
		"tax_policy_type", saved.TaxPolicyType,
		"overtime_rate", saved.OvertimeRate.String(),
		"night_work_rate", saved.NightWorkRate.String(),
	)
	return payroll.NewPolicyResponse(saved), nil
}

// effectivePolicy returns the stored policy or, without persisting it, the default.
func effectivePolicy(ctx context.Context, repo payroll.PolicyRepository, storeID string) (payroll.PayrollPolicy, error) {
	policy, err := repo.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, payroll.ErrPolicyNotFound) {
			return payroll.DefaultPolicy(storeID), nil
		}
		return payroll.PayrollPolicy{}, fmt.Errorf("failed to get payroll policy: %w", err)
	}
	return policy, nil
}
