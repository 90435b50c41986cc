package enums

// OrderStatus is the human facing fulfilment label shown on an order.
type OrderStatus string

const (
	OrderStatusVerificationPending OrderStatus = "Verification Pending"
	OrderStatusProcessing          OrderStatus = "Processing"
	OrderStatusShipped             OrderStatus = "Shipped"
	OrderStatusDelivered           OrderStatus = "Delivered"
)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}
