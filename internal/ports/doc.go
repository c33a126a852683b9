// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Publisher]: Creates batches, transmits them and releases the connection
//   - [Batch]: A capacity-checked accumulation of events
//   - [PublisherOpener]: Acquires a Publisher bound to a target
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters implement them for the Event Hubs AMQP
// protocol (azeventhubs) and the Kafka-compatible endpoint (sarama).
package ports
