package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
// Cada componente recibe su sección por constructor; nada lee variables de entorno de forma ambiental.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	JWT    JWTConfig
	Dynamo DynamoConfig
	Search SearchConfig
	Blob   BlobConfig
	Sync   SyncConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de validación de tokens.
// El servicio no emite tokens; solo los verifica con el secreto compartido.
type JWTConfig struct {
	Secret string
	Issuer string
}

// DynamoConfig configuración de la tabla de productos en DynamoDB.
// Endpoint permite apuntar a DynamoDB Local en desarrollo (vacío = AWS).
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string
}

// SearchConfig configuración del motor de búsqueda (Elasticsearch).
type SearchConfig struct {
	BaseURL string
}

// BlobConfig configuración del bucket de imágenes en S3.
// PublicBaseURL permite servir las imágenes detrás de un CDN; vacío = URL directa del bucket.
type BlobConfig struct {
	Bucket        string
	Region        string
	PublicBaseURL string
}

// SyncConfig configuración del job de sincronización con el índice de búsqueda.
type SyncConfig struct {
	StreamARN    string
	PollSeconds  int    // intervalo entre lecturas de un shard
	BatchSize    int    // máximo de registros por GetRecords
	IteratorType string // TRIM_HORIZON o LATEST
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DYNAMO_TABLE, SEARCH_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "catalogo-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		Dynamo: DynamoConfig{
			Table:    getString(v, "DYNAMO_TABLE", "productos"),
			Region:   getString(v, "AWS_REGION", "us-east-1"),
			Endpoint: getString(v, "DYNAMO_ENDPOINT", ""),
		},
		Search: SearchConfig{
			BaseURL: getString(v, "SEARCH_URL", "http://localhost:9200"),
		},
		Blob: BlobConfig{
			Bucket:        getString(v, "BLOB_BUCKET", ""),
			Region:        getString(v, "AWS_REGION", "us-east-1"),
			PublicBaseURL: getString(v, "BLOB_PUBLIC_URL", ""),
		},
		Sync: SyncConfig{
			StreamARN:    getString(v, "SYNC_STREAM_ARN", ""),
			PollSeconds:  getInt(v, "SYNC_POLL_SECONDS", 5),
			BatchSize:    getInt(v, "SYNC_BATCH_SIZE", 100),
			IteratorType: getString(v, "SYNC_ITERATOR_TYPE", "LATEST"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
