package orders

// transitions lists the statuses each status may move to.
var transitions = map[string][]string{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable is true for orders whose goods have not left the gallery.
func Cancellable(status string) bool {
	return CanTransition(status, StatusCancelled)
}

// RevenueStatuses lists the statuses of orders whose payment was received.
func RevenueStatuses() []string {
	return []string{StatusPaid, StatusProcessing, StatusShipped, StatusDelivered}
}
