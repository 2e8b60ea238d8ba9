package product

import "fmt"

// Status is the closed set of product lifecycle states.
type Status string

const (
	// StatusRegistered: manufacturer deposit locked, waiting for sale.
	StatusRegistered Status = "registered"
	// StatusSold: customer escrow locked, expiry clock running.
	StatusSold Status = "sold"
	// StatusRecycled: position withdrawn, rewards distributed. Terminal.
	StatusRecycled Status = "recycled"
	// StatusExpired: position withdrawn after the expiry horizon. Terminal.
	StatusExpired Status = "expired"
	// StatusRecalled: manufacturer pulled an unsold product back. Terminal.
	StatusRecalled Status = "recalled"
)

// AllStatuses lists every valid lifecycle state.
var AllStatuses = []Status{
	StatusRegistered,
	StatusSold,
	StatusRecycled,
	StatusExpired,
	StatusRecalled,
}

// ParseStatus converts a raw string into a Status.
// Unknown values produce a *ValidationError.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusRegistered, StatusSold, StatusRecycled, StatusExpired, StatusRecalled:
		return Status(raw), nil
	default:
		return "", &ValidationError{Msg: fmt.Sprintf("invalid status: %s", raw)}
	}
}

// Terminal reports whether the state admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusRecycled, StatusExpired, StatusRecalled:
		return true
	case StatusRegistered, StatusSold:
		return false
	}
	return false
}

func (s Status) String() string { return string(s) }
