// Package thermostat implements the device-facing API for Hysen controllers.
//
// A device couples a Transport with one register profile. Every setter
// follows the same sequence while holding the device lock:
//
//  1. refresh: read the status block and replace the cached state
//  2. validate the argument against that fresh state
//  3. encode the command and send it through the transport
//  4. check the echo
//
// Validation failures return a *ValidationError and nothing is written.
// Protocol failures return a *protocol.Error; an echo mismatch also drops
// the session so the next call authenticates again. Transport errors are
// returned unchanged and never retried.
//
// The state used for validation can go stale between the read and the write
// if someone presses a button on the thermostat in that window. Nothing
// guards against that.
//
// # Clock sync
//
// With Options.SyncClock set, the first status read during Options.SyncHour
// pushes the wall clock to the device. A failed push is logged and retried
// on the next read within the same hour; it never blocks the read.
//
// # Usage
//
//	dev := thermostat.NewHeating(transport, thermostat.Options{Name: "bathroom"})
//	state, err := dev.Refresh()
//	if err != nil {
//	    return err
//	}
//	if err := dev.SetTargetTemp(state.TargetTemp + 0.5); err != nil {
//	    if thermostat.IsConstraintViolated(err) {
//	        // outside min/max
//	    }
//	    return err
//	}
package thermostat
