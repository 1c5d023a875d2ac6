package services

import (
	"fmt"

	"court_filing_app_go/models"
)

// Rule names who may act on a resource
type Rule int

const (
	// RuleOwnerOrAdmin lets the resource owner or any admin through
	RuleOwnerOrAdmin Rule = iota
	// RuleAdminOnly lets admins through
	RuleAdminOnly
	// RuleOwnerOnly lets only the owner through, admins included
	RuleOwnerOnly
)

// Authorize is the single capability check used by every endpoint.
// It returns ErrUnauthorized without a caller and ErrForbidden when the rule fails.
func Authorize(caller *models.User, ownerID string, rule Rule) error {
	if caller == nil {
		return ErrUnauthorized
	}

	isOwner := ownerID != "" && caller.ID == ownerID
	allowed := false
	switch rule {
	case RuleOwnerOrAdmin:
		allowed = isOwner || caller.IsAdmin()
	case RuleAdminOnly:
		allowed = caller.IsAdmin()
	case RuleOwnerOnly:
		allowed = isOwner
	}

	if !allowed {
		return fmt.Errorf("access denied: %w", ErrForbidden)
	}
	return nil
}
