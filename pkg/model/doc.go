// Package model defines the static description of back-office entry forms:
// fields, their input kinds, the option list they draw from, and the
// declarative rule table (format rules, unconditional and conditional
// requiredness, numeric bounds, visibility) the validation engine evaluates.
// Definitions are plain data; sessions receive clones so a screen can never
// mutate the catalog it was built from. Conditional rules are expressions in
// the visibility/expr grammar keyed off sibling field values, so the same
// evaluator drives both "is this field shown" and "is this field required".
package model
