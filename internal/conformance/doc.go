// Package conformance keeps three representations of one callable in sync.
//
// A request names one target per view kind: an argparse registration
// function (cli), a type declaration (class) and a declaration (function),
// plus which of them is the truth. GroundTruth parses all three, takes the
// truth's IR as canonical and compares every other representation against
// it on docs, params and returns:
//
//   - equal representations are reported unchanged and left alone
//   - different ones are re-emitted from the canonical IR, keeping their own
//     body, and reported modified
//
// Reconciliation refuses rather than guesses. A lookup name that does not
// resolve is a NameNotFound error; a declaration that owns an independent
// body and a doc block conflicting with the canonical IR is an
// AmbiguousReconciliation error. No file is touched by GroundTruth itself;
// WriteModified persists the patched modules of a Result.
//
// The report has one line per representation, always in the order cli,
// class, function:
//
//	unchanged	argparse.py
//	modified	classes.py
//	unchanged	methods.py
package conformance
