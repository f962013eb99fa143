package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SlackConfig struct {
	BotToken      string
	ChannelID     string
	SigningSecret string
}

type WeatherConfig struct {
	APIKey    string
	Latitude  float64
	Longitude float64
}

type ServerConfig struct {
	Addr string
}

type ControllerConfig struct {
	PumpOnAboveC      float64
	PumpOffBelowC     float64
	SprayDurationSec  int
	TargetHumidityMin float64
	TargetHumidityMax float64
	PumpFlowLPM       float64
	MistFlowLPS       float64
}

type SchedulerConfig struct {
	SampleIntervalSec   int
	WateringIntervalSec int
}

type Config struct {
	MQTT       MQTTConfig
	Database   DatabaseConfig
	Slack      SlackConfig
	Weather    WeatherConfig
	Server     ServerConfig
	Controller ControllerConfig
	Scheduler  SchedulerConfig
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")

	v.BindEnv("mqtt.broker", "MQTT_BROKER")
	v.BindEnv("mqtt.clientid", "MQTT_CLIENT_ID")
	v.BindEnv("mqtt.username", "MQTT_USERNAME")
	v.BindEnv("mqtt.password", "MQTT_PASSWORD")

	v.BindEnv("slack.bottoken", "SLACK_BOT_TOKEN")
	v.BindEnv("slack.channelid", "SLACK_CHANNEL_ID")
	v.BindEnv("slack.signingsecret", "SLACK_SIGNING_SECRET")

	v.BindEnv("weather.apikey", "OPENWEATHER_API_KEY")
	v.BindEnv("weather.latitude", "FARM_LATITUDE")
	v.BindEnv("weather.longitude", "FARM_LONGITUDE")

	v.BindEnv("server.addr", "SERVER_ADDR")

	v.BindEnv("controller.pumponabovec", "PUMP_ON_ABOVE_C")
	v.BindEnv("controller.pumpoffbelowc", "PUMP_OFF_BELOW_C")
	v.BindEnv("controller.spraydurationsec", "SPRAY_DURATION_SEC")
	v.BindEnv("controller.targethumiditymin", "TARGET_HUMIDITY_MIN")
	v.BindEnv("controller.targethumiditymax", "TARGET_HUMIDITY_MAX")
	v.BindEnv("controller.pumpflowlpm", "PUMP_FLOW_LPM")
	v.BindEnv("controller.mistflowlps", "MIST_FLOW_LPS")

	v.BindEnv("scheduler.sampleintervalsec", "SAMPLE_INTERVAL_SEC")
	v.BindEnv("scheduler.wateringintervalsec", "WATERING_INTERVAL_SEC")

	v.SetDefault("server.addr", ":8080")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	if env == "local" {
		v.SetConfigFile(".env.local")
		v.SetConfigType("env")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file .env.local: %w", err)
			}
			log.Println("Info: .env.local not found, relying on environment variables.")
		} else {
			log.Printf("Loaded configuration from %s", v.ConfigFileUsed())
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// DSN returns the PostgreSQL connection string.
func (cfg *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.Port,
		cfg.Database.SSLMode,
	)
}

// SampleInterval returns the sensor polling interval, defaulting to 5s.
func (cfg *Config) SampleInterval() time.Duration {
	if cfg.Scheduler.SampleIntervalSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.Scheduler.SampleIntervalSec) * time.Second
}

// WateringInterval returns the watering tick interval, defaulting to 3s.
func (cfg *Config) WateringInterval() time.Duration {
	if cfg.Scheduler.WateringIntervalSec <= 0 {
		return 3 * time.Second
	}
	return time.Duration(cfg.Scheduler.WateringIntervalSec) * time.Second
}

// SprayDuration returns the mist single-shot duration, defaulting to 5s.
func (cfg *Config) SprayDuration() time.Duration {
	if cfg.Controller.SprayDurationSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.Controller.SprayDurationSec) * time.Second
}
