package kafka

import (
	"strings"
	"time"
)

// Config configures the kafka-go writers. RequiredAcks follows kafka.RequiredAcks:
// 0 none, 1 leader, -1 all in-sync replicas.
type Config struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	WriteTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "inventory-service",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
		WriteTimeout: 10 * time.Second,
	}
}

// Topics contains the inventory event topics
var Topics = struct {
	PurchasingEvents string
	ReceivingEvents  string
	ReturnsEvents    string
	CatalogEvents    string
}{
	PurchasingEvents: "jewellery.purchasing.events",
	ReceivingEvents:  "jewellery.receiving.events",
	ReturnsEvents:    "jewellery.returns.events",
	CatalogEvents:    "jewellery.catalog.events",
}

// TopicFor routes an event type such as "receiving.stock-in.posted" to its topic by the
// segment before the first dot. Unknown segments return "".
func TopicFor(eventType string) string {
	domain, _, _ := strings.Cut(eventType, ".")
	return topicsByDomain[domain]
}

var topicsByDomain = map[string]string{
	"purchasing": Topics.PurchasingEvents,
	"receiving":  Topics.ReceivingEvents,
	"returns":    Topics.ReturnsEvents,
	"catalog":    Topics.CatalogEvents,
}
