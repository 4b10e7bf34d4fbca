package lib

import (
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	TopicBookingsCreated   = "bookings-created"
	TopicBookingsCancelled = "bookings-cancelled"
)

func GetKafkaProducerConfig() kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         "bookingsProducer",
		"acks":              "all",
	}
}

var kafkaProducer *kafka.Producer

func getKafkaProducer() (*kafka.Producer, error) {
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	cfg := GetKafkaProducerConfig()
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Error initializing kafka producer: %s\n", err.Error())
		return nil, err
	}
	kafkaProducer = p
	return p, nil
}

// KafkaProduceMessage publishes a payload to topic. Booking workflows call
// this best-effort after commit; a broker failure never fails the booking.
func KafkaProduceMessage(topic string, payload map[string]any) error {
	p, err := getKafkaProducer()
	if err != nil {
		return err
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing payload for topic %s: %s\n", topic, err.Error())
		return err
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("Error producing message to %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}
