// Package translate turns transcript segments into translated segments one
// segment at a time, through a pluggable Translator backend.
//
// New selects the backend named by translation.provider: the public Google
// endpoint ("google") or the chat-completion client ("llm").
package translate
