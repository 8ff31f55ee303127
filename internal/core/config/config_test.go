package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, 3000, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 24, c.JWT.TTLHours)
	assert.Equal(t, "admin123", c.Seed.AdminPassword)
	assert.Equal(t, 20, c.Throttle.Limit)
}

func TestRead_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  http:
    port: 8088
jwt:
  secret: from-file
db:
  driver: postgres
  dsn: postgres://u:p@localhost:5432/app
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 8088, c.App.HTTP.Port)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, "deeptrust", c.JWT.Issuer)
}

func TestRead_ExplicitMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// leafKeys lists the viper keys Config unmarshals into.
func leafKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" {
			name = f.Name
		}
		key := prefix + strings.ToLower(name)
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, leafKeys(f.Type, key+".")...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func TestSetDefaults_CoversEveryKey(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	keys := leafKeys(reflect.TypeOf(Config{}), "")
	require.NotEmpty(t, keys)
	for _, k := range keys {
		assert.True(t, v.IsSet(k), "no default for %s", k)
	}
}

func TestRead_EnvOnlyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: x\n"), 0o600))
	t.Setenv("APP_DB_USERNAME", "svc")
	t.Setenv("APP_DB_PASSWORD", "s3cret")
	t.Setenv("APP_DB_MAXOPENCONNS", "12")
	t.Setenv("APP_REDIS_ADDR", "redis:6379")
	t.Setenv("APP_REDIS_DB", "3")
	t.Setenv("APP_LOG_ROTATE_ENABLE", "true")
	t.Setenv("APP_ANALYZER_SEED", "42")

	c, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "svc", c.DB.Username)
	assert.Equal(t, "s3cret", c.DB.Password)
	assert.Equal(t, 12, c.DB.MaxOpenConns)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, 3, c.Redis.DB)
	assert.True(t, c.Log.Rotate.Enable)
	assert.Equal(t, uint64(42), c.Analyzer.Seed)
}
