// Package markup provides tolerant HTML tag helpers used by the docrender pipeline.
//
// Template fragments are user-authored HTML mixed with placeholder syntax, so they
// are never well-formed documents. The helpers here run the golang.org/x/net/html
// tokenizer over a fragment and report start tags together with their byte span in
// the original text. Callers rewrite a tag and splice it back without touching the
// surrounding markup.
//
// # Key Functions
//
// FindTags: locate every start tag with a given name, with offsets and attributes.
//
// ReplaceTags: splice rewritten tags back into a fragment, back to front so that
// earlier offsets stay valid.
//
// StyleProperty / SetStyleProperty: read and update one declaration of an inline
// style attribute.
//
// TextContent: the visible text of a fragment, used for page estimates.
//
// The package is pure: it keeps no state and does not import docrender.
package markup
