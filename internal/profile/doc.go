// Package profile describes the register maps of Hysen thermostats.
//
// Two device families are supported and share nothing beyond the clock and
// the lock/power word:
//   - Heating (HY03, device type 0x4EAD): 23-word status block, half-degree
//     temperatures, six weekday and two weekend schedule periods.
//   - FanCoil (HY03AC, device type 0x4F5B): 16-word status block, whole-degree
//     temperatures, two enable-flagged on/off periods.
//
// # Status Layout
//
// Each profile declares a Layout: a table of Fields giving name, offset,
// width, shift, mask, scale and signedness. Offsets index the register data
// returned by a read, which is the response payload after its 01 03 count
// header. Decode fails with ErrTruncatedStatus when the block is short and
// never returns a partial state.
//
// # Encoded Values
//
// Calibration is a signed offset stored in an unsigned byte (FanCoil, tenths)
// or word (Heating, halves). EncodeSigned truncates toward zero and wraps
// negative values into the upper half of the range; DecodeSigned reverses it.
//
// FanCoil schedule hours carry an enable flag in bit 7 and the hour in the
// low five bits. PackHour and UnpackHour keep the two apart.
//
// # Commands
//
// Encode methods take the proposed state and return a Command whose Payload
// is the exact request payload:
//
//	proposed := current
//	proposed.TargetTemp = 24
//	cmd := profile.FanCoil.EncodeTarget(proposed) // 01 06 00 02 00 18
//
// Encoders never validate. Range and cross-field checks belong to the
// thermostat package and run before a command is built.
package profile
