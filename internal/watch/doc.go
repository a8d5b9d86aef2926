// Package watch re-validates a trace file whenever it changes on disk.
//
// The watcher monitors the file's directory through fsnotify and filters
// events down to the one path it cares about, so editors that replace the
// file on save (rename plus create) are still seen. Rapid write bursts are
// debounced: the handler fires once per quiet period, not once per write.
package watch
