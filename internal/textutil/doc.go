// Package textutil provides filename sanitization for uploads and derived
// artifact names.
package textutil
