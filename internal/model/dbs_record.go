package model

import (
	"time"

	"github.com/google/uuid"
)

type DBSStatus string

const (
	DBSStatusPending  DBSStatus = "pending"
	DBSStatusVerified DBSStatus = "verified"
	DBSStatusRejected DBSStatus = "rejected"
	DBSStatusExpired  DBSStatus = "expired"
)

// DBSRecord is a tutor's Disclosure and Barring Service certificate
type DBSRecord struct {
	ID                uuid.UUID  `json:"id"`
	TutorID           uuid.UUID  `json:"tutor_id"`
	CertificateNumber string     `json:"certificate_number"`
	IssueDate         time.Time  `json:"issue_date"`
	ExpiryDate        time.Time  `json:"expiry_date"`
	FileKey           string     `json:"-"`
	FileName          string     `json:"file_name"`
	ContentType       string     `json:"content_type"`
	SizeBytes         int64      `json:"size_bytes"`
	Status            DBSStatus  `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	VerifiedBy        *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsPending checks if the record is waiting for admin review
func (r *DBSRecord) IsPending() bool {
	return r.Status == DBSStatusPending
}

// IsExpiredAt checks the expiry date against now
func (r *DBSRecord) IsExpiredAt(now time.Time) bool {
	return !r.ExpiryDate.IsZero() && r.ExpiryDate.Before(now)
}

// EffectiveStatus is the status to display at time now.
// A verified certificate past its expiry date reads as expired even before
// the expiry sweep has rewritten the stored status.
func (r *DBSRecord) EffectiveStatus(now time.Time) DBSStatus {
	if r.Status == DBSStatusVerified && r.IsExpiredAt(now) {
		return DBSStatusExpired
	}
	return r.Status
}

// IsValidAt reports whether the tutor holds a usable certificate at time now
func (r *DBSRecord) IsValidAt(now time.Time) bool {
	return r.EffectiveStatus(now) == DBSStatusVerified
}
