package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// maxPayloadSize bounds one value envelope. Calendar values are the largest
// the dashboard writes and stay far below it.
const maxPayloadSize = 256 << 10

// Subscribe routes every message matching topic to handler. The backend
// subscribes Topics().AllStates() once; the pattern is remembered and
// re-subscribed after each reconnect so the broker replays the retained
// snapshot.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: %s: nil handler", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.subMu.Unlock()

	if err := await(c.client.Subscribe(topic, qos, c.wrapHandler(handler)), ErrSubscribeFailed, topic); err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return err
	}
	return nil
}

// SubscriptionCount returns the number of topic patterns restored on reconnect.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// Publish sends payload to topic and waits for the broker acknowledgement.
// Writes go to Topics().Set(id) and are never retained.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %s: %d bytes, limit %d", ErrPayloadTooLarge, topic, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.client.Publish(topic, qos, retained, payload), ErrPublishFailed, topic)
}

func checkTopic(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: got %d for %s", ErrInvalidQoS, qos, topic)
	}
	return nil
}

// await blocks on token and wraps a failure or timeout in sentinel.
func await(token pahomqtt.Token, sentinel error, topic string) error {
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("%w: %s: no acknowledgement within %v", sentinel, topic, operationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", sentinel, topic, err)
	}
	return nil
}
