package domain

type (
	// OrderStatus represents the status of an order.
	OrderStatus string
	// DeliveryStatus represents the status of a delivery.
	DeliveryStatus string
)

// List of possible order statuses
const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// List of possible delivery statuses, in progression order
const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryProcessing DeliveryStatus = "processing"
	DeliveryOnRoute    DeliveryStatus = "on_route"
	DeliveryDelivered  DeliveryStatus = "delivered"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderProcessing, OrderConfirmed, OrderShipped, OrderCompleted, OrderCancelled,
}

var deliveryProgression = [...]DeliveryStatus{
	DeliveryPending, DeliveryProcessing, DeliveryOnRoute, DeliveryDelivered,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Next returns the single legal successor. Delivered has none.
func (s DeliveryStatus) Next() (DeliveryStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(deliveryProgression)-1 {
		return "", false
	}
	return deliveryProgression[r+1], true
}

func (s DeliveryStatus) rank() int {
	for i, v := range deliveryProgression {
		if s == v {
			return i
		}
	}
	return -1
}
