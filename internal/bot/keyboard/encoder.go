package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CallbackDataSeparator  = "_"
	CallbackDataLimitBytes = 64
)

var (
	// ErrEmptyCallback is returned for an empty callback payload.
	ErrEmptyCallback = errors.New("callback data is empty")
	// ErrUnknownAction is returned when no known action prefixes the payload.
	ErrUnknownAction = errors.New("unknown callback action")
)

// EncodeCallback joins action and data into a `<action>_<data>` payload and
// enforces the Telegram size limit.
func EncodeCallback(action, data string) (string, error) {
	payload := action
	if data != "" {
		payload = action + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits payload into one of the known actions and its data.
// Actions may themselves contain the separator; the longest match wins.
func DecodeCallback(payload string, actions ...string) (action, data string, err error) {
	if payload == "" {
		return "", "", ErrEmptyCallback
	}

	for _, candidate := range actions {
		if len(candidate) <= len(action) {
			continue
		}

		switch {
		case payload == candidate:
			action, data = candidate, ""
		case strings.HasPrefix(payload, candidate+CallbackDataSeparator):
			action, data = candidate, payload[len(candidate)+len(CallbackDataSeparator):]
		}
	}

	if action == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownAction, payload)
	}

	return action, data, nil
}
