package lifecycle

import (
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
)

type Event string

const (
	EventClose  Event = "close"
	EventSettle Event = "settle"
	EventReset  Event = "reset"
)

// NextState computes the status a round moves to on evt. directSettle lets
// an open round settle without being closed first.
func NextState(cur model.RoundStatus, evt Event, directSettle bool) (model.RoundStatus, error) {
	switch cur {
	case model.RoundOpen:
		switch {
		case evt == EventClose:
			return model.RoundClosed, nil
		case evt == EventSettle && directSettle:
			return model.RoundCompleted, nil
		case evt == EventReset:
			return model.RoundReset, nil
		}
	case model.RoundClosed:
		switch evt {
		case EventSettle:
			return model.RoundCompleted, nil
		case EventReset:
			return model.RoundReset, nil
		}
	}

	return cur, fmt.Errorf("%w: %s --%s--> ?", model.ErrInvalidTransition, cur, evt)
}

// AcceptsBets reports whether wagers may be placed in status s.
func AcceptsBets(s model.RoundStatus) bool {
	return s == model.RoundOpen
}
