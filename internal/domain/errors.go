// Package domain defines the typed failures returned by service operations.
//
// Expected conditions (not found, forbidden, conflicts, bad input) are
// ordinary error values carrying a stable machine-readable code so that
// clients can key behavior off the code rather than the message. Only
// infrastructure faults (database down, cancelled context) travel as plain
// wrapped errors.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure; the HTTP layer maps each kind to a
// status code.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

// Error is a domain failure with a stable code and a human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsError unwraps err into a *Error if it is one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func Unauthorized(code, format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(code, format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Well-known failures shared across services. Parameterized failures (for
// example a not-found naming the missing shelf) are built with the
// constructors above using the same codes.
var (
	ErrUnauthenticated = Unauthorized("Auth.Unauthenticated", "authentication required")

	ErrBookNotFound  = NotFound("Books.NotFound", "book not found")
	ErrShelfNotFound = NotFound("Shelves.NotFound", "shelf not found")
	ErrUserNotFound  = NotFound("Users.NotFound", "user not found")

	ErrShelfNotOwned            = Forbidden("Shelves.NotOwner", "shelf belongs to another user")
	ErrDefaultShelfDelete       = Forbidden("Shelves.DefaultShelfDeleteDenied", "default shelves cannot be deleted")
	ErrDefaultShelfRename       = Forbidden("Shelves.DefaultShelfRenameDenied", "default shelves cannot be renamed")
	ErrDefaultShelfManualAdd    = Validation("Shelves.DefaultShelfManualAddDenied", "cannot manually add to a default shelf; use the status endpoint")
	ErrDuplicateShelfMembership = Conflict("Shelves.DuplicateMembership", "book is already on this shelf")
	ErrShelfMembershipNotFound  = NotFound("Shelves.MembershipNotFound", "book is not on this shelf")

	ErrDuplicateReview  = Conflict("Reviews.Duplicate", "you have already reviewed this book")
	ErrReviewNotFound   = NotFound("Reviews.NotFound", "review not found")
	ErrReviewNotOwned   = Forbidden("Reviews.NotOwner", "review belongs to another user")
	ErrRatingOutOfRange = Validation("Reviews.RatingOutOfRange", "rating must be between 0 and 5")

	ErrQuoteNotFound  = NotFound("Quotes.NotFound", "quote not found")
	ErrQuoteNotOwned  = Forbidden("Quotes.NotOwner", "quote belongs to another user")
	ErrQuoteEmptyText = Validation("Quotes.EmptyText", "quote text is required")

	ErrSelfFollow   = Validation("Social.SelfFollow", "you cannot follow yourself")
	ErrNotFollowing = NotFound("Social.NotFollowing", "you are not following this user")
)
