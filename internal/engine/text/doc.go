// Package text provides an immutable string content for the mark engine.
//
// A unit is one extended grapheme cluster, so combining sequences, emoji
// with modifiers and "\r\n" are each crossed in a single step. Refs are
// byte offsets into the string and always fall on cluster boundaries when
// produced by Step.
package text
