package statetransition

// Deposit and Withdraw are the two op_type values spec.md §3 enumerates.
// The circuit enforces op_type is one of these two values (constraint 2,
// circuit.go); there is no third value.
const (
	Deposit = 0
	Withdraw = 1
)
