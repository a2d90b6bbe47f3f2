package cart

// Reason is a machine-checkable code for why a cart mutation was refused.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonOutOfStock        Reason = "out_of_stock"
	ReasonInsufficientStock Reason = "insufficient_stock"
	ReasonUnknownProduct    Reason = "unknown_product"
)

// Result is the outcome of a cart mutation. Business-rule refusals (out of
// stock, quantity over availability) are Results, not errors: the Message is
// surfaced to the user as-is.
type Result struct {
	Success bool
	Reason  Reason
	Message string
}

func ok(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(reason Reason, message string) Result {
	return Result{Success: false, Reason: reason, Message: message}
}
