package domain

import "time"

type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

// AddressFields is the user-editable part of an address.
type AddressFields struct {
	FullName     string      `json:"full_name"`
	PhoneNumber  string      `json:"phone_number"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	Pincode      string      `json:"pincode"`
	Country      string      `json:"country"`
	AddressType  AddressType `json:"address_type"`
}

type Address struct {
	ID      int32 `json:"id"`
	OwnerID int32 `json:"owner_id"`
	AddressFields
	IsActive  bool      `json:"is_active"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
