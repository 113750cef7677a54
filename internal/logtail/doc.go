// Package logtail reads the tail of the quotebox log file for the activity
// pane.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) regardless of file size. Each line is decoded from zap's JSON
// encoding into an Entry; lines that are not JSON come back verbatim as the
// message.
//
// A missing file is not an error: the log may not exist until the first sync.
package logtail
