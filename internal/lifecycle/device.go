package lifecycle

import (
	"errors"
	"fmt"
)

// DeviceStatus is an opaque state tag for the farmer onboarding journey.
// Display labels belong to the presentation layer, not here.
type DeviceStatus string

const (
	StatusRegistered      DeviceStatus = "registered"
	StatusPendingPayment  DeviceStatus = "pending_payment"
	StatusPendingShipment DeviceStatus = "pending_shipment"
	StatusShipping        DeviceStatus = "shipping"
	StatusDelivered       DeviceStatus = "delivered"
	StatusPendingInstall  DeviceStatus = "pending_install_confirmation"
	StatusActive          DeviceStatus = "active"
	StatusDeviceOffline   DeviceStatus = "device_offline"
	StatusDeviceOnline    DeviceStatus = "device_online"
)

// DeviceEvent is a lifecycle transition trigger.
type DeviceEvent string

const (
	EventBeginPurchase       DeviceEvent = "begin_purchase"
	EventPurchase            DeviceEvent = "purchase"
	EventConfirmShipment     DeviceEvent = "confirm_shipment"
	EventConfirmDelivery     DeviceEvent = "confirm_delivery"
	EventReportInstallation  DeviceEvent = "report_installation"
	EventConfirmInstallation DeviceEvent = "confirm_installation"
	EventConnect             DeviceEvent = "connect"
	EventDisconnect          DeviceEvent = "disconnect"
)

// ErrInvalidTransition is returned when an event is applied to a state for
// which it is not the documented successor. The UI is expected to disable
// such actions; the engine still enforces the table defensively.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// deviceTransitions maps current status -> event -> next status.
// Purchase is accepted both from registered (payment is simulated as
// instantaneous) and from pending_payment.
var deviceTransitions = map[DeviceStatus]map[DeviceEvent]DeviceStatus{
	StatusRegistered: {
		EventBeginPurchase: StatusPendingPayment,
		EventPurchase:      StatusPendingShipment,
	},
	StatusPendingPayment: {
		EventPurchase: StatusPendingShipment,
	},
	StatusPendingShipment: {
		EventConfirmShipment: StatusShipping,
	},
	StatusShipping: {
		EventConfirmDelivery: StatusDelivered,
	},
	StatusDelivered: {
		EventReportInstallation: StatusPendingInstall,
	},
	StatusPendingInstall: {
		EventConfirmInstallation: StatusActive,
	},
	StatusActive: {
		EventConnect: StatusDeviceOnline,
	},
	StatusDeviceOffline: {
		EventConnect: StatusDeviceOnline,
	},
	StatusDeviceOnline: {
		EventDisconnect: StatusDeviceOffline,
	},
}

// DeviceStatuses lists every status tag in onboarding order.
func DeviceStatuses() []DeviceStatus {
	return []DeviceStatus{
		StatusRegistered,
		StatusPendingPayment,
		StatusPendingShipment,
		StatusShipping,
		StatusDelivered,
		StatusPendingInstall,
		StatusActive,
		StatusDeviceOffline,
		StatusDeviceOnline,
	}
}

// DeviceEvents lists every lifecycle event.
func DeviceEvents() []DeviceEvent {
	return []DeviceEvent{
		EventBeginPurchase,
		EventPurchase,
		EventConfirmShipment,
		EventConfirmDelivery,
		EventReportInstallation,
		EventConfirmInstallation,
		EventConnect,
		EventDisconnect,
	}
}

// Transition applies ev to cur and returns the next status, or
// ErrInvalidTransition when ev is not valid from cur. There is no third
// outcome.
func Transition(cur DeviceStatus, ev DeviceEvent) (DeviceStatus, error) {
	next, ok := deviceTransitions[cur][ev]
	if !ok {
		return cur, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, cur)
	}
	return next, nil
}

// DeviceOnline reports whether sensor sampling should run for this status.
func DeviceOnline(s DeviceStatus) bool {
	return s == StatusDeviceOnline
}
