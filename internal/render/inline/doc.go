// Package inline renders short AI-authored text with a small inline and
// block style vocabulary.
//
// Parsing is two passes. A line-oriented scanner partitions input into
// blocks by sniffing line prefixes (headers, code fences, block quotes,
// list markers, thematic breaks); contiguous lines with the same marker
// collapse into one block and unmatched lines accumulate into paragraphs.
// A second pass applies the inline rules per block: inline code, bold,
// italic, labeled links, with bold matched before italic so ** is not
// consumed as two italics.
//
// The output vocabulary cannot express executable content, so no sandbox
// is involved; links carry a data attribute for an explicit host-side
// follow action, never auto-navigation.
package inline
