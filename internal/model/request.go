package model

import "time"

// RequestStatus is the lifecycle state of a rental request. Only the
// property's landlord moves a request out of pending.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// RentalRequest is a tenant's request to rent a property.
type RentalRequest struct {
	ID         string        `json:"_id"`
	PropertyID string        `json:"propertyId"`
	TenantID   string        `json:"tenantId"`
	Message    string        `json:"message"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Active reports whether the request blocks a duplicate submission for the
// same (tenant, property) pair. Pending and approved requests are active;
// rejected ones are not.
func (r RentalRequest) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}
