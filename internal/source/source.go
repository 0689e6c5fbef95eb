// Package source defines the boundary to the remote visitor store.
//
// The remote store is consumed as an opaque streaming collection ordered
// by its update timestamp, newest first. Every change notification carries
// the complete current list, never a delta. The package also ships two
// local implementations: an in-memory store for tests and demo mode, and
// a SQLite-backed store for development against persistent data.
package source

import (
	"context"
	"time"

	"github.com/visitorhub/visitorhub/internal/visitor"
)

// Streamer is a push-based subscription to the visitor collection.
//
// Subscribe registers the callbacks and returns a cancel function. The
// initial snapshot is delivered before Subscribe returns, then again on
// every change until cancel is called or ctx is done. Cancel is
// synchronous: after it returns, no further callbacks fire.
//
// onSnapshot receives the complete ordered list (updatedAt descending).
// onError reports subscription failures; the subscription may keep
// delivering afterwards if the condition clears.
type Streamer interface {
	Subscribe(ctx context.Context, onSnapshot func([]visitor.Record), onError func(error)) (cancel func(), err error)
}

// Updater issues a partial update to a single record. Only the given
// fields change; the rest of the document is untouched, including the
// ordering timestamp - a writer that wants the record re-sorted must set
// FieldUpdatedAt explicitly.
type Updater interface {
	Update(ctx context.Context, id string, fields map[string]any) error
}

// Store is the full remote-store surface the application consumes.
type Store interface {
	Streamer
	Updater
}

// Wire field names, as they appear in remote documents and in the fields
// map passed to Update.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldOnline      = "online"
	FieldCurrentPage = "currentPage"
	FieldCity        = "city"
	FieldArea        = "area"
	FieldFullAddress = "fullAddress"
	FieldCardNumber  = "number"
	FieldExpiry      = "expiry"
	FieldCVV         = "cvv"
	FieldLastOTP     = "lastOtp"
	FieldOTPAttempts = "otpAttempts"
	FieldUnread      = "isUnread"
	FieldUpdatedAt   = "updatedAt"
)

// applyFields merges a partial update into a record. Unknown field names
// are ignored, matching the remote store's lenient schema.
func applyFields(r *visitor.Record, fields map[string]any) {
	for name, value := range fields {
		switch name {
		case FieldFirstName:
			if s, ok := value.(string); ok {
				r.FirstName = s
			}
		case FieldLastName:
			if s, ok := value.(string); ok {
				r.LastName = s
			}
		case FieldEmail:
			if s, ok := value.(string); ok {
				r.Email = s
			}
		case FieldPhone:
			if s, ok := value.(string); ok {
				r.Phone = s
			}
		case FieldOnline:
			if b, ok := value.(bool); ok {
				r.Online = b
			}
		case FieldCurrentPage:
			if s, ok := value.(string); ok {
				r.CurrentPage = s
			}
		case FieldCity:
			if s, ok := value.(string); ok {
				r.City = s
			}
		case FieldArea:
			if s, ok := value.(string); ok {
				r.Area = s
			}
		case FieldFullAddress:
			if s, ok := value.(string); ok {
				r.FullAddress = s
			}
		case FieldCardNumber:
			if s, ok := value.(string); ok {
				r.CardNumber = s
			}
		case FieldExpiry:
			if s, ok := value.(string); ok {
				r.Expiry = s
			}
		case FieldCVV:
			if s, ok := value.(string); ok {
				r.CVV = s
			}
		case FieldLastOTP:
			if s, ok := value.(string); ok {
				r.LastOTP = s
			}
		case FieldOTPAttempts:
			if ss, ok := value.([]string); ok {
				r.OTPAttempts = ss
			}
		case FieldUnread:
			if b, ok := value.(bool); ok {
				r.Unread = b
			}
		case FieldUpdatedAt:
			if t, ok := value.(time.Time); ok {
				r.UpdatedAt = t
			}
		}
	}
}
