// Package language normalizes and validates language codes for translation
// targets, speech voices, and transcript metadata.
package language
