package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusReturned  RentalStatus = "returned"
)

// IsTerminal reports whether no further transition is defined from s.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusRejected || s == RentalStatusCancelled || s == RentalStatusReturned
}

// BlocksAvailability reports whether a request in status s reserves its date range.
func (s RentalStatus) BlocksAvailability() bool {
	return s == RentalStatusPending || s == RentalStatusApproved
}

// Annotatable reports whether the owner may still attach delivery or return notes.
func (s RentalStatus) Annotatable() bool {
	return s != RentalStatusRejected && s != RentalStatusCancelled
}

// BlockingRentalStatuses lists the statuses checked by the overlap rule.
var BlockingRentalStatuses = []RentalStatus{RentalStatusPending, RentalStatusApproved}

type RentalEvent string

const (
	RentalEventApprove  RentalEvent = "approve"
	RentalEventReject   RentalEvent = "reject"
	RentalEventCancel   RentalEvent = "cancel"
	RentalEventComplete RentalEvent = "complete"
	RentalEventReturn   RentalEvent = "return"
	RentalEventRate     RentalEvent = "rate"
	RentalEventAnnotate RentalEvent = "annotate"
	RentalEventDelete   RentalEvent = "delete"
)

type RentalActor string

const (
	RentalActorRequester RentalActor = "requester"
	RentalActorOwner     RentalActor = "owner"
)

// RentalRule describes one row of the transition table. To equals From for
// events that only attach data (rate).
type RentalRule struct {
	From  RentalStatus
	Actor RentalActor
	To    RentalStatus
}

var rentalRules = map[RentalEvent]RentalRule{
	RentalEventApprove:  {From: RentalStatusPending, Actor: RentalActorOwner, To: RentalStatusApproved},
	RentalEventReject:   {From: RentalStatusPending, Actor: RentalActorOwner, To: RentalStatusRejected},
	RentalEventCancel:   {From: RentalStatusPending, Actor: RentalActorRequester, To: RentalStatusCancelled},
	RentalEventComplete: {From: RentalStatusApproved, Actor: RentalActorOwner, To: RentalStatusCompleted},
	RentalEventReturn:   {From: RentalStatusCompleted, Actor: RentalActorOwner, To: RentalStatusReturned},
	RentalEventRate:     {From: RentalStatusReturned, Actor: RentalActorRequester, To: RentalStatusReturned},
}

// LookupRentalRule returns the rule for event. Annotate and delete have no
// rule: annotate is allowed for the owner in any status that is not rejected
// or cancelled, delete for the requester while pending.
func LookupRentalRule(event RentalEvent) (RentalRule, bool) {
	r, ok := rentalRules[event]
	return r, ok
}

type RentalRequest struct {
	ID                int32        `json:"id"`
	RequesterID       int32        `json:"requester_id"`
	OwnerID           int32        `json:"owner_id"`
	ProductID         int32        `json:"product_id"`
	DeliveryAddressID int32        `json:"delivery_address_id"`
	StartDate         time.Time    `json:"start_date"`
	EndDate           time.Time    `json:"end_date"`
	RentalDays        int32        `json:"rental_days"`
	DailyRateCents    int64        `json:"daily_rate_cents"`
	TotalAmountCents  int64        `json:"total_amount_cents"`
	Status            RentalStatus `json:"status"`
	Message           string       `json:"message,omitempty"`
	RejectionReason   string       `json:"rejection_reason,omitempty"`
	ApprovedAt        *time.Time   `json:"approved_at,omitempty"`
	DeliveredAt       *time.Time   `json:"delivered_at,omitempty"`
	ReturnedAt        *time.Time   `json:"returned_at,omitempty"`
	IsDelivered       bool         `json:"is_delivered"`
	IsReturned        bool         `json:"is_returned"`
	DeliveryNotes     string       `json:"delivery_notes,omitempty"`
	ReturnNotes       string       `json:"return_notes,omitempty"`
	Rating            *int32       `json:"rating,omitempty"`
	Review            string       `json:"review,omitempty"`
	CreatedOn         time.Time    `json:"created_on"`
	UpdatedOn         time.Time    `json:"updated_on"`
}

// ActorFor returns the role userID plays on the request.
func (r *RentalRequest) ActorFor(userID int32) (RentalActor, bool) {
	switch userID {
	case r.OwnerID:
		return RentalActorOwner, true
	case r.RequesterID:
		return RentalActorRequester, true
	}
	return "", false
}

// Overlaps applies the closed-interval test: touching endpoints overlap.
func (r *RentalRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// RentalStats counts requests per status for each side of the marketplace.
type RentalStats struct {
	AsRequester map[RentalStatus]int32 `json:"as_requester"`
	AsOwner     map[RentalStatus]int32 `json:"as_owner"`
}
