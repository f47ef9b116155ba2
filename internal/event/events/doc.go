// Package events defines typed event payloads published by the mark engine.
//
// Each event has a topic constant and a payload struct. Payloads carry plain
// identifiers (document id, mark handle id, view number) rather than engine
// types so that subscribers need not import the engine.
//
// # Usage
//
//	evt := event.NewEvent(events.TopicMarkMoving,
//	    events.MarkMoving{DocumentID: doc.ID(), MarkID: m.ID(), Seq: seq},
//	    "mark")
//	_ = bus.Publish(ctx, evt)
package events
