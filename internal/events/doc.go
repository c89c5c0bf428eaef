// Package events provides the content event model and the emitter that
// fans events out to handlers.
//
// The publishing store decorators emit an event after every successful
// mutation, so handlers (a Kafka publisher, a log sink) observe committed
// changes only. AsyncHandler queues events for slow handlers on a small
// worker pool so request latency does not depend on the broker.
package events
