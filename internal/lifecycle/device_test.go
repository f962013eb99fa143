package lifecycle

import (
	"errors"
	"testing"
)

func TestDeviceTransitionTable(t *testing.T) {
	// The documented successor for every (status, event) pair. Everything
	// absent from this map must fail with ErrInvalidTransition.
	valid := map[DeviceStatus]map[DeviceEvent]DeviceStatus{
		StatusRegistered: {
			EventBeginPurchase: StatusPendingPayment,
			EventPurchase:      StatusPendingShipment,
		},
		StatusPendingPayment:  {EventPurchase: StatusPendingShipment},
		StatusPendingShipment: {EventConfirmShipment: StatusShipping},
		StatusShipping:        {EventConfirmDelivery: StatusDelivered},
		StatusDelivered:       {EventReportInstallation: StatusPendingInstall},
		StatusPendingInstall:  {EventConfirmInstallation: StatusActive},
		StatusActive:          {EventConnect: StatusDeviceOnline},
		StatusDeviceOffline:   {EventConnect: StatusDeviceOnline},
		StatusDeviceOnline:    {EventDisconnect: StatusDeviceOffline},
	}

	for _, status := range DeviceStatuses() {
		for _, event := range DeviceEvents() {
			t.Run(string(status)+"/"+string(event), func(t *testing.T) {
				next, err := Transition(status, event)
				want, ok := valid[status][event]
				if ok {
					if err != nil {
						t.Fatalf("expected %s, got error %v", want, err)
					}
					if next != want {
						t.Errorf("expected %s, got %s", want, next)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got next=%s err=%v", next, err)
				}
				if next != status {
					t.Errorf("status must not move on rejection: got %s", next)
				}
			})
		}
	}
}

func TestDeviceOnlineToggle(t *testing.T) {
	// Once active, connect/disconnect may toggle freely.
	status := StatusActive
	for i := 0; i < 3; i++ {
		next, err := Transition(status, EventConnect)
		if err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
		if next != StatusDeviceOnline {
			t.Fatalf("connect %d: got %s", i, next)
		}
		status, err = Transition(next, EventDisconnect)
		if err != nil {
			t.Fatalf("disconnect %d: %v", i, err)
		}
		if status != StatusDeviceOffline {
			t.Fatalf("disconnect %d: got %s", i, status)
		}
	}
}

func TestDeviceOnline(t *testing.T) {
	if DeviceOnline(StatusActive) {
		t.Error("active is not online")
	}
	if !DeviceOnline(StatusDeviceOnline) {
		t.Error("device_online must report online")
	}
}

func TestPurchaseSkipsPendingPayment(t *testing.T) {
	// Payment is simulated as instantaneous, so the successful purchase
	// path goes straight to pending_shipment.
	next, err := Transition(StatusRegistered, EventPurchase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != StatusPendingShipment {
		t.Errorf("expected pending_shipment, got %s", next)
	}
}
