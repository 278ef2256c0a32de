package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del cliente (board) y del backend stub
// (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Stub    StubConfig
	JWT     JWTConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// APIConfig apunta al backend REST autoritativo que consume el cliente.
type APIConfig struct {
	BaseURL        string // ej. http://localhost:5000/api
	TimeoutSeconds int
}

// SessionConfig ubicación del archivo donde se persiste la sesión
// (token + usuario) entre reinicios.
type SessionConfig struct {
	Path string
}

// StubConfig configuración del backend stub de desarrollo.
type StubConfig struct {
	Host         string
	Port         int
	SQLitePath   string
	SeedPassword string // contraseña de los usuarios sembrados en una DB vacía
}

// JWTConfig parámetros de firma de tokens del stub.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Addr devuelve host:port para escuchar.
func (c StubConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "prospect-board"),
		},
		API: APIConfig{
			BaseURL:        getString(v, "API_BASE_URL", "http://localhost:5000/api"),
			TimeoutSeconds: getInt(v, "API_TIMEOUT_SECONDS", 10),
		},
		Session: SessionConfig{
			Path: getString(v, "SESSION_PATH", defaultSessionPath()),
		},
		Stub: StubConfig{
			Host:         getString(v, "STUB_HOST", "0.0.0.0"),
			Port:         getInt(v, "STUB_PORT", 5000),
			SQLitePath:   getString(v, "STUB_SQLITE_PATH", "prospect-board.db"),
			SeedPassword: getString(v, "STUB_SEED_PASSWORD", "password123"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "prospect-board"),
		},
	}

	return cfg, nil
}

// defaultSessionPath replica el rol de localStorage: un archivo fijo por usuario.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".prospect-board-session.json"
	}
	return filepath.Join(dir, "prospect-board", "session.json")
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
