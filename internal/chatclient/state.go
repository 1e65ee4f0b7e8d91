package chatclient

import (
	"errors"
	"fmt"
)

// WidgetState is the visibility of the chat widget.
type WidgetState int

const (
	Closed WidgetState = iota
	OpenExpanded
	OpenMinimized
)

func (s WidgetState) String() string {
	switch s {
	case Closed:
		return "Closed"
	case OpenExpanded:
		return "Open-Expanded"
	case OpenMinimized:
		return "Open-Minimized"
	default:
		return fmt.Sprintf("WidgetState(%d)", int(s))
	}
}

// IsOpen reports whether the widget is showing in either size.
func (s WidgetState) IsOpen() bool {
	return s == OpenExpanded || s == OpenMinimized
}

type Action string

const (
	ActionOpen     Action = "open"
	ActionMinimize Action = "minimize"
	ActionExpand   Action = "expand"
	ActionClose    Action = "close"
)

var ErrInvalidTransition = errors.New("invalid widget transition")

// Transition returns the state reached by applying action to from.
func Transition(from WidgetState, action Action) (WidgetState, error) {
	switch {
	case from == Closed && action == ActionOpen:
		return OpenExpanded, nil
	case from == OpenExpanded && action == ActionMinimize:
		return OpenMinimized, nil
	case from == OpenMinimized && action == ActionExpand:
		return OpenExpanded, nil
	case from.IsOpen() && action == ActionClose:
		return Closed, nil
	}
	return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
}
