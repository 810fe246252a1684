package domain

import "time"

// StatusRegistered is the status assigned to every donation at creation.
// Core donor fields stay editable and the record stays deletable only while
// the donation remains in this status.
const StatusRegistered = "Registrada"

// Donation represents a registered contribution tracked by the organization.
type Donation struct {
	ID           int64
	DonorName    string
	DonorPhone   string
	DonorEmail   string
	DonationType string
	Quantity     int64
	Destination  string
	CreatedAt    time.Time
	Status       string
	Token        string
	PhotoPath    string // storage key of the uploaded photo, empty when none
}

// Editable reports whether the core donor fields may still be changed.
func (d Donation) Editable() bool {
	return d.Status == StatusRegistered
}

// Deletable reports whether the donation may still be removed.
func (d Donation) Deletable() bool {
	return d.Status == StatusRegistered
}

// HasPhoto reports whether a delivery photo has been attached.
func (d Donation) HasPhoto() bool {
	return d.PhotoPath != ""
}
