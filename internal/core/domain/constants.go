package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrTransport          = errors.New("transport error")
	ErrUnknownModule      = errors.New("unknown module")
	ErrAlreadyConnected   = errors.New("already connected")
	ErrNotIdentified      = errors.New("bot identity not known yet")
)
