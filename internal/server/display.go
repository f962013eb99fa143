package server

import "github.com/temantani/smartfarm/internal/lifecycle"

// Display labels live here, at the edge. The lifecycle package deals in
// opaque tags only.

var deviceStatusLabels = map[lifecycle.DeviceStatus]string{
	lifecycle.StatusRegistered:      "Registered",
	lifecycle.StatusPendingPayment:  "Awaiting Payment",
	lifecycle.StatusPendingShipment: "Preparing Shipment",
	lifecycle.StatusShipping:        "Device Shipping",
	lifecycle.StatusDelivered:       "Device Delivered",
	lifecycle.StatusPendingInstall:  "Awaiting Installation Check",
	lifecycle.StatusActive:          "Device Active",
	lifecycle.StatusDeviceOffline:   "Device Offline",
	lifecycle.StatusDeviceOnline:    "Device Online",
}

var orderStatusLabels = map[lifecycle.OrderStatus]string{
	lifecycle.OrderPendingPayment: "Awaiting Payment",
	lifecycle.OrderProcessing:     "Processing",
	lifecycle.OrderShipping:       "Shipping",
	lifecycle.OrderCompleted:      "Completed",
	lifecycle.OrderCanceled:       "Canceled",
}

// DeviceStatusLabel returns the human-readable label for a status tag. An
// unknown tag falls back to the raw tag so nothing renders blank.
func DeviceStatusLabel(s lifecycle.DeviceStatus) string {
	if label, ok := deviceStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// OrderStatusLabel returns the human-readable label for an order status tag.
func OrderStatusLabel(s lifecycle.OrderStatus) string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
