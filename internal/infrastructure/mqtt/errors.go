package mqtt

import "errors"

// Bus errors. Match them with errors.Is; the wrapped message names the topic.
var (
	ErrNotConnected     = errors.New("mqtt: not connected to broker")
	ErrConnectionFailed = errors.New("mqtt: broker connection failed")
	ErrPublishFailed    = errors.New("mqtt: value write failed")
	ErrSubscribeFailed  = errors.New("mqtt: state subscription failed")
	ErrInvalidQoS       = errors.New("mqtt: QoS must be 0, 1 or 2")
	ErrInvalidTopic     = errors.New("mqtt: empty topic")
	ErrPayloadTooLarge  = errors.New("mqtt: payload too large")
)
