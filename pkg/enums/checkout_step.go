package enums

import "fmt"

// CheckoutStep identifies the stage a checkout session is currently on.
type CheckoutStep string

const (
	CheckoutStepCart     CheckoutStep = "cart"
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepPayment  CheckoutStep = "payment"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepCart,
	CheckoutStepShipping,
	CheckoutStepPayment,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range orderedCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// Index returns the position of the step in the forward progression.
func (c CheckoutStep) Index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == c {
			return i
		}
	}
	return -1
}

// Next returns the step that follows, or the same step when already at the end.
func (c CheckoutStep) Next() CheckoutStep {
	idx := c.Index()
	if idx < 0 || idx >= len(orderedCheckoutSteps)-1 {
		return c
	}
	return orderedCheckoutSteps[idx+1]
}

// Before reports whether c comes strictly before other in the flow.
func (c CheckoutStep) Before(other CheckoutStep) bool {
	return c.Index() < other.Index()
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
