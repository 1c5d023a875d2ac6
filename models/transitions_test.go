package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{CaseStatusPending, CaseStatusApproved, true},
		{CaseStatusPending, CaseStatusRejected, true},
		{CaseStatusPending, CaseStatusCompleted, false},
		{CaseStatusApproved, CaseStatusInProgress, true},
		{CaseStatusRejected, CaseStatusPending, true},
		{CaseStatusInProgress, CaseStatusCompleted, true},
		{CaseStatusCompleted, CaseStatusPending, false},
		{CaseStatusApproved, CaseStatusApproved, true},
		{CaseStatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CaseTransitions.Allows(tt.from, tt.to))
		})
	}
}

func TestHearingTransitions(t *testing.T) {
	assert.True(t, HearingTransitions.Allows(HearingStatusScheduled, HearingStatusPostponed))
	assert.True(t, HearingTransitions.Allows(HearingStatusPostponed, HearingStatusPostponed))
	assert.True(t, HearingTransitions.Allows(HearingStatusPostponed, HearingStatusScheduled))
	assert.False(t, HearingTransitions.Allows(HearingStatusCancelled, HearingStatusScheduled))
	assert.False(t, HearingTransitions.Allows(HearingStatusCompleted, HearingStatusPostponed))
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, PaymentTransitions.Allows(PaymentPending, PaymentCompleted))
	assert.True(t, PaymentTransitions.Allows(PaymentPending, PaymentFailed))
	assert.False(t, PaymentTransitions.Allows(PaymentFailed, PaymentCompleted))
	assert.False(t, PaymentTransitions.Allows(PaymentCompleted, PaymentFailed))
}

func TestEvidenceTransitions(t *testing.T) {
	assert.True(t, EvidenceTransitions.Allows(ApprovalPending, ApprovalApproved))
	assert.True(t, EvidenceTransitions.Allows(ApprovalApproved, ApprovalRejected))
	assert.False(t, EvidenceTransitions.Allows(ApprovalApproved, ApprovalPending))
}

func TestTransitionsCheck(t *testing.T) {
	assert.NoError(t, CaseTransitions.Check(CaseStatusPending, CaseStatusApproved))

	err := CaseTransitions.Check(CaseStatusCompleted, CaseStatusPending)
	assert.EqualError(t, err, `cannot change status from "completed" to "pending"`)

	err = CaseTransitions.Check(CaseStatusPending, "bogus")
	assert.EqualError(t, err, `unknown status "bogus"`)
}
