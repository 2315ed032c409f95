package isolation

// Reason explains a verdict, both for skips and for isolation itself
type Reason string

const (
	// ReasonLumpSumCustomer skips a lump-sum payer still within tolerance
	ReasonLumpSumCustomer Reason = "lump_sum_customer"
	// ReasonRecentPayment skips a customer who paid recently
	ReasonRecentPayment Reason = "recent_payment"
	// ReasonNotOverdueEnough skips a customer whose overdue run is below threshold
	ReasonNotOverdueEnough Reason = "not_overdue_enough"
	// ReasonConsecutiveOverdue isolates a customer with an unbroken overdue run
	ReasonConsecutiveOverdue Reason = "consecutive_overdue"
)

// Verdict is the outcome of one evaluation. It is computed fresh every time
// and never persisted; only its effect (the customer status transition) is.
type Verdict struct {
	Isolate                  bool
	Reason                   Reason
	ConsecutiveOverdueMonths int
	Message                  string
}
