// Command langmux infers audio and subtitle languages for a media library
// and embeds them as container metadata.
package main
