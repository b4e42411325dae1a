// Package bert rewrites simple event descriptions into the flatter form used to
// train BERT-style models: self-referential renames are dropped, type assertions
// are read from the type side, and dates are spelled out in words.
package bert
