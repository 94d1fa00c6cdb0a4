package telemetry

// spontaneousBit is the position of the "spontaneous update" flag counted
// from the least significant bit. In the 32-character MSB-first rendering of
// the status word it is the character at index 14.
const spontaneousBit = 17

// spontaneousMask selects the spontaneous-update flag in a status word.
const spontaneousMask uint32 = 1 << spontaneousBit

// IsSpontaneous reports whether a status word marks the sample as an
// externally triggered update.
//
// The status is reduced to its unsigned 32-bit representation first, so
// negative values and values wider than 32 bits are inspected the same way the
// archive encodes them. All bits other than the spontaneous flag are ignored.
func IsSpontaneous(status int64) bool {
	return uint32(status)&spontaneousMask != 0 //nolint:gosec // truncation to the 32-bit status word is intended
}
