package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTT topics for real-time alerts consumed by the donor app.
const (
	topicRequestApproved    = "bloodbridge/requests/approved"
	topicEmergencyBroadcast = "bloodbridge/broadcasts"
	topicStockAlert         = "bloodbridge/stock/alerts"
)

// InterfaceMQTTAlertService defines the MQTT alert service interface
type InterfaceMQTTAlertService interface {
	Connect() error
	Disconnect()
	PublishRequestApproved(request *models.BloodRequest) error
	PublishBroadcast(broadcast *models.EmergencyBroadcast) error
	PublishStockAlert(bloodGroup string, units uint) error
}

// MQTTAlertService pushes real-time events to the MQTT broker. All publishes
// are best-effort; a broker outage never fails the triggering operation.
type MQTTAlertService struct {
	Config *config.Config
	Client mqtt.Client
}

// NewMQTTAlertService creates a new MQTT alert service
func NewMQTTAlertService(cfg *config.Config) InterfaceMQTTAlertService {
	return &MQTTAlertService{Config: cfg}
}

// Connect establishes the broker connection. A missing broker URL disables
// the service without error.
func (s *MQTTAlertService) Connect() error {
	if s.Config.MQTTBrokerURL == "" {
		logger.Info("MQTT broker not configured, real-time alerts disabled")
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.MQTTBrokerURL).
		SetClientID(s.Config.MQTTClientID).
		SetUsername(s.Config.MQTTUsername).
		SetPassword(s.Config.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("connected to MQTT broker %s", s.Config.MQTTBrokerURL)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warning("MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return errors.New("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return err
	}

	s.Client = client
	return nil
}

// Disconnect closes the broker connection
func (s *MQTTAlertService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// PublishRequestApproved announces an approved request
func (s *MQTTAlertService) PublishRequestApproved(request *models.BloodRequest) error {
	return s.publish(topicRequestApproved, map[string]interface{}{
		"request_id":  request.ID,
		"blood_group": request.BloodGroup,
		"unit":        request.Unit,
		"approved_at": time.Now().UTC(),
	})
}

// PublishBroadcast announces an emergency broadcast
func (s *MQTTAlertService) PublishBroadcast(broadcast *models.EmergencyBroadcast) error {
	return s.publish(topicEmergencyBroadcast, map[string]interface{}{
		"broadcast_id": broadcast.ID,
		"blood_group":  broadcast.BloodGroup,
		"message":      broadcast.Message,
		"zipcode":      broadcast.Zipcode,
	})
}

// PublishStockAlert announces a low or changed stock level
func (s *MQTTAlertService) PublishStockAlert(bloodGroup string, units uint) error {
	return s.publish(topicStockAlert, map[string]interface{}{
		"blood_group": bloodGroup,
		"units":       units,
	})
}

func (s *MQTTAlertService) publish(topic string, payload map[string]interface{}) error {
	if s.Client == nil || !s.Client.IsConnected() {
		return nil
	}

	// Trace ID lets the donor app dedupe redelivered messages
	payload["trace_id"] = uuid.New().String()
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.Client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	return token.Error()
}
