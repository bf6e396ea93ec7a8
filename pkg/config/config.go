package config

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	KeySubsystems              = "subsystems"
	KeyLogLevel                = "log_level"
	KeyRedisEndpoint           = "redis_endpoint"
	KeyAPIListen               = "api_listen"
	KeyMinimumMarginPercent    = "minimum_margin_percent"
	KeyMinimumOrderAmount      = "minimum_order_amount"
	KeyScanIntervalSeconds     = "scan_interval_seconds"
	KeyPollIntervalSeconds     = "poll_interval_seconds"
	KeyPollTimeoutSeconds      = "poll_timeout_seconds"
	KeyPaymentTolerancePercent = "payment_tolerance_percent"
	KeyOverdueDeadlineSeconds  = "overdue_deadline_seconds"
	KeyReceivingAddress        = "receiving_address"
	KeyExplorerEndpoint        = "explorer_endpoint"
	KeyExplorerAPIKey          = "explorer_api_key"
	KeyNotifyWebhook           = "notify_webhook"
	KeyInvoiceDir              = "invoice_dir"
)

var allSubsystems = []string{
	"order",
	"vetting",
	"dispatch",
	"fulfillment",
	"invoice",
	"overdue",
	"finish",
	"payment",
}

var localSubsystems sync.Map

// Init loads configuration from environment (NEXUS_* variables) and an
// optional config file, applying the documented defaults.
func Init(cfgFile string) error {
	viper.SetDefault(KeySubsystems, allSubsystems)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyRedisEndpoint, "")
	viper.SetDefault(KeyAPIListen, ":8080")
	viper.SetDefault(KeyMinimumMarginPercent, 20.0)
	viper.SetDefault(KeyMinimumOrderAmount, 50.0)
	viper.SetDefault(KeyScanIntervalSeconds, 30)
	viper.SetDefault(KeyPollIntervalSeconds, 300)
	viper.SetDefault(KeyPollTimeoutSeconds, 60)
	viper.SetDefault(KeyPaymentTolerancePercent, 2.0)
	viper.SetDefault(KeyOverdueDeadlineSeconds, 3*24*60*60)
	viper.SetDefault(KeyReceivingAddress, "")
	viper.SetDefault(KeyExplorerEndpoint, "https://api.polygonscan.com/api")
	viper.SetDefault(KeyExplorerAPIKey, "")
	viper.SetDefault(KeyNotifyWebhook, "")
	viper.SetDefault(KeyInvoiceDir, "invoices")

	viper.SetEnvPrefix("nexus")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

func Subsystems() []string {
	return viper.GetStringSlice(KeySubsystems)
}

func SupportSubsystem(system string) bool {
	if val, ok := localSubsystems.Load(system); ok {
		return val.(bool)
	}
	for _, subsystem := range Subsystems() {
		if system == subsystem {
			return true
		}
	}
	return false
}

func EnableSubsystem(system string) {
	localSubsystems.Store(system, true)
}

func DisableSubsystem(system string) {
	localSubsystems.Store(system, false)
}

func LogLevel() string {
	return viper.GetString(KeyLogLevel)
}

func RedisEndpoint() string {
	return viper.GetString(KeyRedisEndpoint)
}

func APIListen() string {
	return viper.GetString(KeyAPIListen)
}

func MinimumMarginPercent() decimal.Decimal {
	return decimal.NewFromFloat(viper.GetFloat64(KeyMinimumMarginPercent))
}

func MinimumOrderAmount() decimal.Decimal {
	return decimal.NewFromFloat(viper.GetFloat64(KeyMinimumOrderAmount))
}

func ScanInterval() time.Duration {
	return time.Duration(viper.GetInt(KeyScanIntervalSeconds)) * time.Second
}

func PollInterval() time.Duration {
	return time.Duration(viper.GetInt(KeyPollIntervalSeconds)) * time.Second
}

func PollTimeout() time.Duration {
	return time.Duration(viper.GetInt(KeyPollTimeoutSeconds)) * time.Second
}

func PaymentTolerancePercent() decimal.Decimal {
	return decimal.NewFromFloat(viper.GetFloat64(KeyPaymentTolerancePercent))
}

func OverdueDeadline() time.Duration {
	return time.Duration(viper.GetInt(KeyOverdueDeadlineSeconds)) * time.Second
}

func ReceivingAddress() string {
	return viper.GetString(KeyReceivingAddress)
}

func ExplorerEndpoint() string {
	return viper.GetString(KeyExplorerEndpoint)
}

func ExplorerAPIKey() string {
	return viper.GetString(KeyExplorerAPIKey)
}

func NotifyWebhook() string {
	return viper.GetString(KeyNotifyWebhook)
}

func InvoiceDir() string {
	return viper.GetString(KeyInvoiceDir)
}
