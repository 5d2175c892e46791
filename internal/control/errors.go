package control

import "errors"

var (
	errNotConnected  = errors.New("control: link not connected")
	errFrameTooLarge = errors.New("control: inbound frame exceeds maximum size")
)
