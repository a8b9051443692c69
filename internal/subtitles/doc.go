// Package subtitles formats SRT timestamps and reads and writes SRT files
// built from translated segments.
package subtitles
