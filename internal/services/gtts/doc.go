// Package gtts synthesizes speech through the public translate_tts endpoint.
//
// Text is split into chunks of at most MaxChunkLength characters at
// punctuation, then at whitespace. Each chunk is fetched as a separate MP3
// and the bodies are concatenated in order into one file. MP3 frames are
// self-delimiting, so the concatenation plays back as a single stream.
package gtts
