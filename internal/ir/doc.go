// Package ir provides the value model shared by every other rowcook package.
//
// This package contains type definitions and the conversions between them.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - FieldValue is a closed set: Null, Int, String. NO floats, NO bools.
//   - ID is a closed set: IntID, UUID. The variant, not a type parameter,
//     decides which identifier space shape a value has.
//   - FieldValueToID is the only coercion from stored values to identifiers.
//   - All values are comparable with ==, so equality is structural.
package ir
