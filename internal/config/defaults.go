package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKSYNC_DB_PATH
const EnvPrefix = "TASKSYNC"

func setLogDefaults(v *viper.Viper, level string) {
	v.SetDefault("log.level", level)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("db_path", "tasksync-client.db")
	v.SetDefault("flush_max_batch", 100)
	v.SetDefault("flush_idle", 200*time.Millisecond)
	v.SetDefault("stale_after", 5*time.Minute)
	v.SetDefault("lock_ttl", 2*time.Minute)
	// CLI не должен засорять вывод информационными сообщениями
	setLogDefaults(v, "warn")
}

func setProviderDefaults(v *viper.Viper, name, baseURL, tokenURL string) {
	v.SetDefault(name+".base_url", baseURL)
	v.SetDefault(name+".token_url", tokenURL)
	v.SetDefault(name+".client_id", "")
	v.SetDefault(name+".client_secret", "")
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_path", "tasksync-server.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_ttl", 30*24*time.Hour)
	v.SetDefault("credentials_key", "")
	v.SetDefault("credentials_key_id", "k1")
	v.SetDefault("sync_interval", 15*time.Minute)
	v.SetDefault("sync_lease", 30*time.Minute)
	v.SetDefault("sync_concurrency", 4)
	v.SetDefault("rate_limit", 100)
	v.SetDefault("provider_rate_limit", 5)
	v.SetDefault("rate_window", time.Minute)
	setProviderDefaults(v, "google", "https://tasks.googleapis.com/tasks/v1", "https://oauth2.googleapis.com/token")
	setProviderDefaults(v, "todoist", "https://api.todoist.com/api/v1", "https://todoist.com/oauth/access_token")
	setLogDefaults(v, "info")
}
