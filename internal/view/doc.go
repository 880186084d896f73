// Package view is the server-side model of a dashboard page.
//
// A Document is the flat list of tile elements built from a page definition.
// Elements carry data-* binding attributes naming the data points they render.
// Refresh routines find elements by attribute value and mutate their text,
// classes, styles, attributes and inner HTML through the Document, which
// records one Patch per property that actually changed. Writing a value an
// element already has records nothing, so rendering the same state twice is
// invisible to connected browsers.
//
// Pending patches are drained with Flush and delivered to a Sink.
//
// A Document is not safe for concurrent use. The synchronisation core owns it
// and serialises every access.
package view
