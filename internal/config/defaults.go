package config

import "time"

const defaultPort = 8080

var defaultLog = Log{
	Level:  "info",
	Format: "json",
}

var defaultGateway = Gateway{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
	Timeout:     3 * time.Second,
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
	DB:   0,
}

var defaultKafka = Kafka{
	Topic:   "orders.events",
	GroupID: "service-delivery-worker",
}

var defaultServices = Services{
	InventoryURL: "http://localhost:8081",
	OrdersURL:    "http://localhost:8082",
	DeliveryURL:  "http://localhost:8083",
}

var defaultSaga = Saga{
	GracePeriod:      2 * time.Second,
	Deadline:         2 * time.Minute,
	RetryInterval:    5 * time.Second,
	Workers:          8,
	QueueSize:        1024,
	RecoveryInterval: 5 * time.Second,
}

var defaultDelivery = Delivery{
	CapacityPerDay:     20,
	TickInterval:       time.Minute,
	ProcessingSchedule: "0 9 * * *",
	OnRouteSchedule:    "0 13 * * *",
	DeliveredSchedule:  "0 18 * * *",
	Location:           "UTC",
	Transport:          TransportHTTP,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultLog returns the default logging settings.
func DefaultLog() Log {
	return defaultLog
}

// DefaultGateway returns the default RPC gateway settings.
func DefaultGateway() Gateway {
	return defaultGateway
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultRedis returns the default redis settings.
func DefaultRedis() Redis {
	return defaultRedis
}

// DefaultKafka returns the default kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultServices returns the default downstream service addresses.
func DefaultServices() Services {
	return defaultServices
}

// DefaultSaga returns the default saga settings.
func DefaultSaga() Saga {
	return defaultSaga
}

// DefaultDelivery returns the default delivery settings.
func DefaultDelivery() Delivery {
	return defaultDelivery
}
