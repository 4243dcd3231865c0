// Package primitive renders the closed-vocabulary tree encoding.
//
// The renderer is a total function from ContentNode to Element: every
// variant maps to a visual representation, unknown kinds and missing
// fields degrade to empty placeholders, and no input can make it panic.
// Because the node vocabulary cannot express executable content, this
// path needs no sandbox.
//
// Display strings pass through a strict sanitizer so stray markup in
// model output renders as text rather than structure.
package primitive
