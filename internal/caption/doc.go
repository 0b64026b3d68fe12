// Package caption turns a script into the two values the encoder needs from
// text alone: how long the clip should run and how the caption is laid out.
//
// Both functions are pure. EstimateSeconds never fails and always lands in
// [MinSeconds, MaxSeconds]; Wrap never splits a word and is idempotent for a
// fixed width.
package caption
