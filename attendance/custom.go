package attendance

import (
	"context"
	"time"
)

// =============================================================================
// CUSTOM POLICY MANAGEMENT
// =============================================================================

// PolicyManager manages per-employee custom overrides. One active override
// per employee: SetCustomPolicy replaces, never accumulates.
type PolicyManager struct {
	Policies  PolicyStore
	Directory EmployeeDirectory

	Now func() time.Time
}

func NewPolicyManager(policies PolicyStore, directory EmployeeDirectory) *PolicyManager {
	return &PolicyManager{Policies: policies, Directory: directory, Now: time.Now}
}

// SetCustomPolicy validates and stores an override, replacing any prior
// override for the employee.
func (pm *PolicyManager) SetCustomPolicy(ctx context.Context, override CustomPolicyOverride) error {
	if err := override.Validate(); err != nil {
		return err
	}

	emp, err := pm.Directory.GetEmployee(ctx, override.EmployeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return ErrEmployeeNotFound
	}

	if override.SetAt.IsZero() {
		override.SetAt = pm.Now().UTC()
	}
	return pm.Policies.SaveOverride(ctx, override)
}

// DeleteCustomPolicy hard-removes an employee's override; subsequent
// resolution falls back to the category default.
func (pm *PolicyManager) DeleteCustomPolicy(ctx context.Context, employeeID EmployeeID) error {
	return pm.Policies.DeleteOverride(ctx, employeeID)
}
