// Package preset holds the named retention templates a volume's policy set
// can be recognised as, and the file and watcher plumbing that lets
// operators add their own.
//
// A rule list matches a template when each of its rules pairs with the
// template rule of the same frequency and each pair has the same recurrence
// and the same retention in whole seconds. The template may carry
// frequencies the list lacks. Anything else, including an empty list, is
// reported as Custom, wrapping the input unchanged.
//
//	lib := preset.DefaultLibrary()
//	tmpl := lib.Match(policies)
//	if tmpl.IsCustom() {
//		// hand-edited schedule
//	}
package preset
