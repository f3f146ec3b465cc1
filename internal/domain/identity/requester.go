package identity

// Requester identifies the authenticated caller of a domain operation.
type Requester struct {
	UserID string
	Admin  bool
}

// CanAccess reports whether the requester may operate on a resource owned by
// ownerID. Admins may operate on any resource.
func (r Requester) CanAccess(ownerID string) bool {
	if r.Admin {
		return true
	}
	return r.UserID != "" && r.UserID == ownerID
}
