package recategorization

import "strings"

// Category is an ordered category code. Shorter codes sort first, then codes
// compare lexically, so A < B < ... < K.
type Category string

// Compare returns -1, 0 or +1 depending on whether c sorts before, equal to or
// after o.
func (c Category) Compare(o Category) int {
	a := strings.ToUpper(strings.TrimSpace(string(c)))
	b := strings.ToUpper(strings.TrimSpace(string(o)))
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// IsZero reports whether no category is set.
func (c Category) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Normalize trims and upper-cases the code.
func (c Category) Normalize() Category {
	return Category(strings.ToUpper(strings.TrimSpace(string(c))))
}

// Activity is the declared activity kind of a client. The set is closed; any
// other value is rejected as invalid input.
type Activity string

const (
	ActivityGoods       Activity = "goods"
	ActivityServices    Activity = "services"
	ActivityLeasing     Activity = "leasing"
	ActivityDualLeasing Activity = "dual_leasing"
)

// Activities lists every known activity kind.
var Activities = []Activity{ActivityGoods, ActivityServices, ActivityLeasing, ActivityDualLeasing}

// Valid reports whether a is one of the known activity kinds.
func (a Activity) Valid() bool {
	switch a {
	case ActivityGoods, ActivityServices, ActivityLeasing, ActivityDualLeasing:
		return true
	}
	return false
}

// Change describes how a freshly computed category relates to the previous one.
type Change string

const (
	ChangeUpgraded      Change = "upgraded"
	ChangeDowngraded    Change = "downgraded"
	ChangeUnchanged     Change = "unchanged"
	ChangeNewlyAssigned Change = "newly_assigned"
	ChangeOutOfRange    Change = "out_of_range"
)

func changeOf(previous, current Category, outOfRange bool) Change {
	switch {
	case outOfRange:
		return ChangeOutOfRange
	case previous.IsZero():
		return ChangeNewlyAssigned
	}
	switch current.Compare(previous) {
	case 1:
		return ChangeUpgraded
	case -1:
		return ChangeDowngraded
	default:
		return ChangeUnchanged
	}
}
