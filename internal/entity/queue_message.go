package entity

// QueueMessage is a message received from an inbound queue.
type QueueMessage struct {
	ID            string
	Body          []byte
	ReceiptHandle string
	ReceiveCount  int

	// Handle carries the driver's native delivery, needed to acknowledge it.
	Handle any
}
