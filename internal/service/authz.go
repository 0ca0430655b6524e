package service

import "fmt"

// Authorize allows a mutation only when actorID owns the resource.
func Authorize(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return fmt.Errorf("%w: only the product owner may change it", ErrUnauthorized)
	}
	return nil
}
