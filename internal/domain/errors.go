package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoInstruments   = errors.New("no instruments to subscribe")
	ErrSameInstrument  = errors.New("yes and no instruments are identical")
	ErrInstrumentBound = errors.New("instrument already bound to another market")
	ErrBudgetExhausted = errors.New("daily trade budget exhausted")
	ErrPositionOpen    = errors.New("position already open for market")
	ErrFeedTerminated  = errors.New("feed terminated")
	ErrWSDisconnect    = errors.New("websocket disconnected")
)
