package payroll

import (
	"fmt"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "DRAFT"
	PayrollStatusConfirmed PayrollStatus = "CONFIRMED"
	PayrollStatusPaid      PayrollStatus = "PAID"
	PayrollStatusCancelled PayrollStatus = "CANCELLED"
)

var transitions = map[PayrollStatus][]PayrollStatus{
	PayrollStatusDraft:     {PayrollStatusConfirmed, PayrollStatusCancelled},
	PayrollStatusConfirmed: {PayrollStatusPaid, PayrollStatusCancelled},
}

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusConfirmed, PayrollStatusPaid, PayrollStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s PayrollStatus) IsTerminal() bool {
	return s == PayrollStatusPaid || s == PayrollStatusCancelled
}

func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves p to next or returns ErrInvalidStatusTransition naming both ends.
func (p *Payroll) Transition(next PayrollStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return apperror.Detail(ErrInvalidStatusTransition,
			fmt.Sprintf("cannot move payroll from %s -> %s", p.Status, next))
	}
	p.Status = next
	return nil
}
