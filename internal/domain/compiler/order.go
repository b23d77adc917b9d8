package compiler

import "sort"

// executionOrder is the positional dependency order of the native engine.
// Provider info must precede filters, filters precede state setup, and so on.
// Gaps are allowed, ties are not.
var executionOrder = map[FunctionName]int{
	ProviderInfo:              1,
	FilterInfo:                2,
	ProviderState:             3,
	VerificationOptions:       4,
	PublishOptions:            5,
	ConsumerFilters:           6,
	CustomHeader:              7,
	DirectorySource:           8,
	BrokerSourceWithSelectors: 9,
}

// Position returns the execution position of name.
func Position(name FunctionName) (int, bool) {
	pos, ok := executionOrder[name]
	return pos, ok
}

// ExecutionOrder returns every function name in execution order.
func ExecutionOrder() []FunctionName {
	names := make([]FunctionName, 0, len(executionOrder))
	for name := range executionOrder {
		names = append(names, name)
	}
	ordered, err := orderNames(names, executionOrder)
	if err != nil {
		panic("invalid execution order: " + err.Error())
	}
	return ordered
}

// orderNames sorts names by their position in order. Every name must have a
// position and no two names may share one.
func orderNames(names []FunctionName, order map[FunctionName]int) ([]FunctionName, error) {
	seen := make(map[int]FunctionName, len(names))
	for _, name := range names {
		pos, ok := order[name]
		if !ok || pos <= 0 {
			return nil, NewOrderMissingError(name)
		}
		if other, dup := seen[pos]; dup {
			return nil, NewOrderConflictError(other, name, pos)
		}
		seen[pos] = name
	}

	ordered := append([]FunctionName(nil), names...)
	sort.Slice(ordered, func(i, j int) bool {
		return order[ordered[i]] < order[ordered[j]]
	})
	return ordered, nil
}

// IsSubsequence reports whether calls appear in execution order with no name
// repeated. Useful for checking recorded engine traffic.
func IsSubsequence(names []FunctionName) bool {
	last := 0
	for _, name := range names {
		pos, ok := executionOrder[name]
		if !ok || pos <= last {
			return false
		}
		last = pos
	}
	return true
}
