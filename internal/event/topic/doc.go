// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// Topics use dot notation:
//
//	mark.moving
//	mark.view.added
//	mark.consistency.violated
//
// Patterns may use "*" to match exactly one segment and "**" to match zero
// or more segments:
//
//	mark.*      matches mark.moving, mark.arrived (not mark.view.added)
//	mark.**     matches every mark topic
//	**.added    matches mark.view.added
package topic
