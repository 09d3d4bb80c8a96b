package service

import (
	"strings"

	"github.com/notevault/notevault/internal/apperr"
)

// requireOwner asserts that the requester owns the resource. It is applied
// by every mutating or single-resource read on notes, always after the
// existence check: absence is NotFound, a foreign owner is Unauthorized.
func requireOwner(resourceOwnerID, requesterID string) error {
	if strings.TrimSpace(resourceOwnerID) != strings.TrimSpace(requesterID) {
		return apperr.Unauthorized("You not the owner")
	}
	return nil
}
