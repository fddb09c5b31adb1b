package repositories

import "errors"

// Caller-recoverable conditions. Anything else coming out of this package is a
// storage failure.
var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrDuplicatePending = errors.New("friend request already sent")
	ErrAlreadyBlocked   = errors.New("user is already blocked")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyHandled   = errors.New("friend request already handled")
	ErrNotBlocked       = errors.New("user is not blocked")
	ErrBlocked          = errors.New("you are blocked by this user")
	ErrRequestForbidden = errors.New("friend request not allowed")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrNotFriends       = errors.New("you are not friends with this user")
	ErrSelfBlock        = errors.New("cannot block yourself")
	ErrSelfShare        = errors.New("cannot share a post with yourself")
)
