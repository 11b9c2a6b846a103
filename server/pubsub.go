package server

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

//PubSub delivers envelopes to sessions connected to any node. Without amqp configuration it only reaches local sessions.
type PubSub struct {
	isEnabled bool
	nodeID string
	exchange string
	pubChan *amqp.Channel
	subChan *amqp.Channel
	sessionHolder *SessionHolder
	logger *Logger
	context context.Context
}

func NewPubSub(config *Config, sessionHolder *SessionHolder, logger *Logger, context context.Context) (*PubSub, error) {

	ps := &PubSub{
		nodeID: config.NodeID,
		exchange: config.RabbitMQ.Exchange,
		sessionHolder: sessionHolder,
		logger: logger,
		context: context,
	}

	if config.RabbitMQ.ConnectionString == "" {
		return ps, nil
	}

	conn, err := amqp.Dial(config.RabbitMQ.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "Error while trying to connect amqp server")
	}

	pubChan, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "Error while trying to open a channel for publish over amqp connection")
	}

	subChan, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "Error while trying to open a channel for subscibe over amqp connection")
	}

	//Now we should define exchange for both channels
	for _, ch := range []*amqp.Channel{pubChan, subChan} {
		err = ch.ExchangeDeclare(
			ps.exchange,
			"fanout",
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, errors.Wrap(err, "Error while trying to define exchange")
		}
	}

	q, err := subChan.QueueDeclare(
		"",
		false,
		false,
		true,
		false,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Error while trying to define queue over subscribe channel")
	}

	err = subChan.QueueBind(
		q.Name,
		"",
		ps.exchange,
		false,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Error while binding queue to subscribe channel")
	}

	msgs, err := subChan.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Error while trying to create consumer channel on subscribe channel")
	}

	go func() {

		defer conn.Close()

		for {
			select {
			case <-context.Done():
				logger.Info("Exiting from subscribe routine")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("Subscribe channel was closed")
					return
				}
				if msg.ContentType != "application/json" {
					logger.Errorw("Unrecognized content type received", "content-type", msg.ContentType)
					continue
				}

				msgModel := &PubSubMessage{}
				if err := json.Unmarshal(msg.Body, msgModel); err != nil {
					logger.Errorw("Error while unmarshal pub sub message data", "error", err)
					continue
				}
				//Own messages were delivered locally before publishing
				if msgModel.NodeID == ps.nodeID {
					continue
				}
				ps.deliver(msgModel)
			}
		}

	}()

	ps.isEnabled = true
	ps.pubChan = pubChan
	ps.subChan = subChan
	return ps, nil

}

//deliver sends the message to local sessions and returns the user ids not connected here
func (ps *PubSub) deliver(message *PubSubMessage) []string {
	if message.All {
		for _, session := range ps.sessionHolder.All() {
			_ = session.Send(message.Data)
		}
		return nil
	}

	missing := make([]string, 0)
	for _, userID := range message.UserIDs {
		if session := ps.sessionHolder.GetByUserID(userID); session != nil {
			_ = session.Send(message.Data)
		} else {
			missing = append(missing, userID)
		}
	}
	return missing
}

func (ps *PubSub) Send(message *PubSubMessage) error {

	message.NodeID = ps.nodeID
	remaining := ps.deliver(message)

	//Broadcasts always travel, targeted messages only for users of other nodes
	if !ps.isEnabled || (!message.All && len(remaining) == 0) {
		return nil
	}
	message.UserIDs = remaining

	data, err := json.Marshal(message)
	if err != nil {
		ps.logger.Errorw("Error while trying to marshal message in send method of pubsub module", "error", err)
		return errors.WithStack(err)
	}

	err = ps.pubChan.Publish(
		ps.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body: data,
		})
	if err != nil {
		ps.logger.Errorw("Error while trying to publish data in send method of pubsub module", "error", err)
		return errors.WithStack(err)
	}

	return nil

}

//Broadcast sends the envelope to every session of every node
func (ps *PubSub) Broadcast(envelope *Envelope) error {
	return ps.Send(&PubSubMessage{All: true, Data: envelope})
}
