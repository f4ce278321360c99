package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/clubkasse/membership-tally/internal/services/tally"
)

// TallyPublisher publishes tally events over an AMQP channel. It
// satisfies the tally service's Publisher interface.
type TallyPublisher struct {
	ch *amqp.Channel
}

func NewTallyPublisher(ch *amqp.Channel) *TallyPublisher {
	return &TallyPublisher{ch: ch}
}

func (p *TallyPublisher) PublishTallyCreated(event tally.CreatedEvent) error {
	return PublishMessage(p.ch, TallyExchange, TallyCreatedKey, event)
}
