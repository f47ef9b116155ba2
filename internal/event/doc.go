// Package event provides the synchronous event bus used to broadcast mark
// engine notifications.
//
// Events are addressed by hierarchical dotted topics (see package topic).
// Subscribers register a pattern, which may contain "*" (one segment) or
// "**" (any number of segments), and receive every published event whose
// topic matches.
//
// # Delivery
//
// Delivery is synchronous: Publish runs every matching handler in the
// caller's goroutine, in subscription order, before returning. This fits
// the editor core, where a document is mutated by a single goroutine and a
// pre-move notification must be observed before the mark actually moves.
// A panicking handler is recovered and counted; it never unwinds into the
// publisher.
//
// # Usage
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("mark.**", func(ctx context.Context, ev any) error {
//	    fmt.Println(ev.(event.TopicProvider).EventTopic())
//	    return nil
//	})
//	defer bus.Unsubscribe(sub)
//
//	_ = bus.Publish(ctx, event.NewEvent(events.TopicMarkMoving, payload, "mark"))
package event
