// Package ir provides the canonical intermediate representation shared by
// every view of a callable: its docstring, its typed declaration and its
// command-line argument registration.
//
// This package contains the data model, the merge operator and the
// comparison primitives only. All other internal packages import ir; ir
// imports nothing internal.
//
// Key design constraints:
//   - Param order is significant and preserved end-to-end
//   - Param names are unique within one IR (enforced by Params.Set)
//   - The returns entry is always named "return_type"
//   - Internal is opaque: it never participates in Equal, Fingerprint or Merge
//   - Floats never reach canonical JSON; default values are fingerprinted by
//     their source rendering
package ir
