package services

import "errors"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrGroupNotFound      = errors.New("group not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrNotGroupMember     = errors.New("user is not a member of this group")
	ErrNotGroupAdmin      = errors.New("group admin role required")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrSamePartyPayment   = errors.New("cannot record a payment to yourself")
	ErrNotRecipient       = errors.New("only the payment recipient may confirm or reject it")
	ErrPaymentFinalized   = errors.New("payment has already been confirmed or rejected")
	ErrOutstandingBalance = errors.New("member has an outstanding balance")
)
