// Package messaging publishes broker-agnostic messages.
//
// Publisher implementations wrap NATS, Kafka, NSQ and Google Pub/Sub. The
// Noop publisher is used when no broker is configured and Memory keeps
// published messages in process for local inspection and tests.
package messaging
