// Package notify publishes best-effort change notifications to an MQTT broker.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Publisher delivers domain events. Failures are logged, never returned to the
// request that caused them.
type Publisher interface {
	CollaboratorAssigned(scheduleID int, userIDs []int)
	CommentCreated(scheduleID, commentID, authorID int)
	Close()
}

func AssignedTopic(userID int) string     { return fmt.Sprintf("memo/users/%d/assigned", userID) }
func CommentsTopic(scheduleID int) string { return fmt.Sprintf("memo/schedules/%d/comments", scheduleID) }

type AssignedMessage struct {
	ScheduleID int       `json:"scheduleId"`
	UserID     int       `json:"userId"`
	At         time.Time `json:"at"`
}

type CommentMessage struct {
	ScheduleID int       `json:"scheduleId"`
	CommentID  int       `json:"commentId"`
	AuthorID   int       `json:"authorId"`
	At         time.Time `json:"at"`
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) CollaboratorAssigned(int, []int) {}
func (Nop) CommentCreated(int, int, int)    {}
func (Nop) Close()                          {}

const publishTimeout = 2 * time.Second

type MQTT struct {
	client mqtt.Client
	wg     sync.WaitGroup
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Connect dials brokerURL and returns a publisher that reconnects on its own.
func Connect(brokerURL, clientID string) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTT{client: client}, nil
}

func (m *MQTT) CollaboratorAssigned(scheduleID int, userIDs []int) {
	now := time.Now().UTC()
	for _, uid := range userIDs {
		m.publish(AssignedTopic(uid), AssignedMessage{ScheduleID: scheduleID, UserID: uid, At: now})
	}
}

func (m *MQTT) CommentCreated(scheduleID, commentID, authorID int) {
	m.publish(CommentsTopic(scheduleID), CommentMessage{
		ScheduleID: scheduleID,
		CommentID:  commentID,
		AuthorID:   authorID,
		At:         time.Now().UTC(),
	})
}

func (m *MQTT) publish(topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("encode notification")
		return
	}
	m.wg.Add(1)
	token := m.client.Publish(topic, 1, false, payload)
	go func() {
		defer m.wg.Done()
		if !token.WaitTimeout(publishTimeout) {
			log.Warn().Str("topic", topic).Msg("MQTT publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}

// Close waits for in-flight publishes and disconnects.
func (m *MQTT) Close() {
	m.wg.Wait()
	m.client.Disconnect(250)
	log.Info().Msg("MQTT client disconnected")
}
