package usecase

import "errors"

var (
	ErrSeminarNotFound = errors.New("seminar not found")
	ErrSeminarFull     = errors.New("seminar is full")
	// ErrEncodingFailed means the QR artifact could not be produced; the
	// booking is rolled back.
	ErrEncodingFailed = errors.New("qr encoding failed")

	ErrStudentNotFound = errors.New("student not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrValidation      = errors.New("validation failed")
)
