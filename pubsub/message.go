// Package pubsub defines the transport interfaces the container drives.
// Implementations live in the sub-packages (nats, amqp, kafka, memory).
package pubsub

// Message defines a pubsub message. Subject is the topic the message is
// published on; for brokers with exchanges it is used as routing key.
type Message struct {
	Subject string
	Reply   string
	Data    []byte
}

// Reply defines a pubsub reply.
type Reply struct {
	Data []byte
}
