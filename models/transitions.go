package models

import "fmt"

// Transitions maps a state to the states it may move to
type Transitions map[string][]string

// CaseTransitions is the case review lifecycle
var CaseTransitions = Transitions{
	CaseStatusDraft:      {CaseStatusPending},
	CaseStatusPending:    {CaseStatusApproved, CaseStatusRejected},
	CaseStatusApproved:   {CaseStatusInProgress, CaseStatusRejected},
	CaseStatusRejected:   {CaseStatusPending},
	CaseStatusInProgress: {CaseStatusCompleted},
	CaseStatusCompleted:  {},
}

// HearingTransitions is the hearing lifecycle. A postponed hearing may be postponed again.
var HearingTransitions = Transitions{
	HearingStatusScheduled: {HearingStatusCompleted, HearingStatusPostponed, HearingStatusCancelled},
	HearingStatusPostponed: {HearingStatusScheduled, HearingStatusCompleted, HearingStatusCancelled, HearingStatusPostponed},
	HearingStatusCompleted: {},
	HearingStatusCancelled: {},
}

// PaymentTransitions: completed and failed are terminal
var PaymentTransitions = Transitions{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {},
	PaymentFailed:    {},
}

// EvidenceTransitions lets an admin revise a decision but never return to pending
var EvidenceTransitions = Transitions{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected},
	ApprovalApproved: {ApprovalRejected},
	ApprovalRejected: {ApprovalApproved},
}

// Allows reports whether from -> to is permitted. Staying in the same state is always allowed.
func (t Transitions) Allows(from, to string) bool {
	if _, known := t[to]; !known {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns an error describing a forbidden transition
func (t Transitions) Check(from, to string) error {
	if _, known := t[to]; !known {
		return fmt.Errorf("unknown status %q", to)
	}
	if !t.Allows(from, to) {
		return fmt.Errorf("cannot change status from %q to %q", from, to)
	}
	return nil
}
