package ownership

// Owns reports whether the authenticated user may mutate a resource
// created by ownerID. Empty ids never match.
func Owns(ownerID, userID string) bool {
	if ownerID == "" || userID == "" {
		return false
	}
	return ownerID == userID
}
