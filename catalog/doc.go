// Package catalog holds the static permission vocabulary: named permission
// bits for the subject (role-level) and scope (channel-overwrite-level)
// contexts, the 128-bit mask type they combine into, and deterministic
// pagination of the vocabulary into selectable pages.
//
// The vocabulary is an immutable data table loaded at init; nothing in this
// package mutates it at runtime. Entries with a zero flag are cosmetic
// placeholders (a name exists in the domain vocabulary without a
// representable bit) and never contribute to a computed mask.
package catalog
