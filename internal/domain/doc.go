// Package domain contains the core entities and value objects for ehsend.
//
// This package has no dependencies on infrastructure concerns (AMQP, Kafka,
// logging) and contains only the rules of a send run.
//
// # Entities
//
//   - [Target]: Where events are published (connection string + event hub)
//   - [Event]: One unit of payload handed to a batch
//   - [SendRequest]: The validated, immutable input of a run
//   - [Report]: The aggregated outcome of a run
package domain
