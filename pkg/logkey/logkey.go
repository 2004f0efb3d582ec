package logkey

// Keys used for structured logging across the service.
const (
	TraceID   = "Trace ID"
	ERROR     = "Error"
	ProductID = "ProductID"
	UserID    = "UserID"
	OrderID   = "OrderID"
)
