package config

import "time"

const (
	defaultPort     = 8080
	defaultGRPCPort = 9090
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultNotify = Notify{
	Driver:         DriverLog,
	Exchange:       "notifications_fanout",
	Subject:        "notifications",
	PublishTimeout: 2 * time.Second,
}

var defaultGeocoder = Geocoder{
	BaseURL:     "https://maps.googleapis.com/maps/api/geocode/json",
	Timeout:     3 * time.Second,
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
}

var defaultAvailability = Availability{
	BaseMinutes:  15,
	MinutesPerKm: 3,
	TimeZone:     "UTC",
}

var defaultCountdown = Countdown{
	UrgentMinutes:  30,
	WarningMinutes: 60,
	ScanInterval:   30 * time.Second,
	BatchSize:      500,
	MarkTTL:        48 * time.Hour,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       20,
	Burst:      40,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		Port:         defaultPort,
		GRPCPort:     defaultGRPCPort,
		LogLevel:     "info",
		DB:           defaultDB,
		Kafka:        Kafka{GroupID: "service-delivery-engine", Topic: "orders.status"},
		Notify:       defaultNotify,
		Geocoder:     defaultGeocoder,
		Availability: defaultAvailability,
		Countdown:    defaultCountdown,
		Orders:       Orders{ServiceLevelMinutes: 60},
		RateLimit:    defaultRateLimit,
		Pprof:        Pprof{Addr: "127.0.0.1:6060"},
	}
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}
