/*
Copyright 2026 Paygate Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "8080"

	// DEFAULT_PAYMENT_QUEUE is the queue the settlement worker consumes.
	// Order intake enqueues exactly one task per order onto it.
	DEFAULT_PAYMENT_QUEUE = "payment"

	DEFAULT_MONITORING_PORT = "5001"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"PAYGATE_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"PAYGATE_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"PAYGATE_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"PAYGATE_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"PAYGATE_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"PAYGATE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"PAYGATE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"PAYGATE_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"PAYGATE_REDIS_SKIP_TLS_VERIFY"`
}

type QueueConfig struct {
	PaymentQueue   string `json:"payment_queue" envconfig:"PAYGATE_QUEUE_PAYMENT_QUEUE"`
	MonitoringPort string `json:"monitoring_port" envconfig:"PAYGATE_QUEUE_MONITORING_PORT"`
}

// PaymentsConfig names the two payment methods the gateway bridges. Wallets
// are keyed by the source method, derived deposit addresses by the
// settlement method.
type PaymentsConfig struct {
	SourcePayment     string `json:"source_payment" envconfig:"PAYGATE_SOURCE_PAYMENT"`
	SettlementPayment string `json:"settlement_payment" envconfig:"PAYGATE_SETTLEMENT_PAYMENT"`
}

// EthereumConfig carries the settlement-side wallet material: the mnemonic
// the cold deposit addresses are derived from, the hot payout address and
// the confirmation ceiling reported to the processing peer.
type EthereumConfig struct {
	Mnemonic              string `json:"mnemonic" envconfig:"PAYGATE_ETHEREUM_MNEMONIC"`
	HotAddress            string `json:"hot_address" envconfig:"PAYGATE_ETHEREUM_HOT_ADDRESS"`
	SettlementCoin        string `json:"settlement_coin" envconfig:"PAYGATE_ETHEREUM_SETTLEMENT_COIN"`
	RequiredConfirmations int64  `json:"required_confirmations" envconfig:"PAYGATE_ETHEREUM_REQUIRED_CONFIRMATIONS"`
}

type BookerConfig struct {
	Url string `json:"url" envconfig:"PAYGATE_BOOKER_URL"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"PAYGATE_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"PAYGATE_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"PAYGATE_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"PAYGATE_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	Payments     PaymentsConfig   `json:"payments"`
	Ethereum     EthereumConfig   `json:"ethereum"`
	Booker       BookerConfig     `json:"booker"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("paygate", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok || c == nil {
		return nil, errors.New("config not loaded from file. Create a json file called paygate.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Paygate Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Ethereum.HotAddress = strings.TrimSpace(cnf.Ethereum.HotAddress)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Queue.PaymentQueue == "" {
		cnf.Queue.PaymentQueue = DEFAULT_PAYMENT_QUEUE
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = DEFAULT_MONITORING_PORT
	}

	if cnf.Payments.SourcePayment == "" {
		cnf.Payments.SourcePayment = "bitshares"
	}
	if cnf.Payments.SettlementPayment == "" {
		cnf.Payments.SettlementPayment = "ethereum"
	}

	if cnf.Ethereum.RequiredConfirmations <= 0 {
		cnf.Ethereum.RequiredConfirmations = 24
	}
	if cnf.Ethereum.SettlementCoin == "" {
		cnf.Ethereum.SettlementCoin = "USDT"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Queue.PaymentQueue == "" {
		mockConfig.Queue.PaymentQueue = DEFAULT_PAYMENT_QUEUE
	}
	if mockConfig.Payments.SourcePayment == "" {
		mockConfig.Payments.SourcePayment = "bitshares"
	}
	if mockConfig.Payments.SettlementPayment == "" {
		mockConfig.Payments.SettlementPayment = "ethereum"
	}
	if mockConfig.Ethereum.SettlementCoin == "" {
		mockConfig.Ethereum.SettlementCoin = "USDT"
	}
	if mockConfig.Ethereum.RequiredConfirmations <= 0 {
		mockConfig.Ethereum.RequiredConfirmations = 24
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
