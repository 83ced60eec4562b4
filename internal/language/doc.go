// Package language normalizes ISO 639 language codes between the two-letter
// form reported by speech and text classifiers and the three-letter form
// written into container metadata.
package language
