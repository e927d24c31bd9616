package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "configs"), 0755))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir := chdirTemp(t)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nGENERATOR_START_DATE=2025-03-01\nGENERATOR_SEED=42\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	err := os.WriteFile(filepath.Join(tempDir, "configs", "test_happy.env"), []byte(envContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "generation_requests", cfg.Kafka.GenerationTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 4, cfg.WorkerPool.Size)

	assert.Equal(t, civil.Date{Year: 2025, Month: time.March, Day: 1}, cfg.Generator.StartDate)
	assert.Equal(t, civil.Date{Year: 2026, Month: time.January, Day: 1}, cfg.Generator.EndDate)
	assert.Equal(t, int64(42), cfg.Generator.Seed)
	assert.Equal(t, FailurePolicyContinue, cfg.Generator.FailurePolicy)
	assert.Equal(t, RerunPolicySkip, cfg.Generator.RerunPolicy)
	assert.Equal(t, "USD", cfg.Generator.DefaultCurrency)
	assert.Equal(t, 30*time.Second, cfg.Generator.RetryInterval)
	assert.Equal(t, 3, cfg.Generator.RetryMaxAttempts)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_DotEnvAndEnvironmentOverride(t *testing.T) {
	tempDir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".env"),
		[]byte("POSTGRES_URL=postgres://from-dotenv/db\n"), 0644))
	t.Setenv("GENERATOR_FAILURE_POLICY", FailurePolicyAbort)
	t.Cleanup(func() { _ = os.Unsetenv("POSTGRES_URL") })

	cfg, err := LoadConfig("missing")

	require.NoError(t, err)
	assert.Equal(t, "postgres://from-dotenv/db", cfg.Postgres.URL)
	assert.Equal(t, FailurePolicyAbort, cfg.Generator.FailurePolicy)
}

func TestLoadConfig_InvalidGenerator(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GENERATOR_START_DATE", "2026-02-01")
	t.Setenv("GENERATOR_END_DATE", "not-a-date")
	t.Setenv("GENERATOR_RERUN_POLICY", "overwrite")

	_, err := LoadConfig("missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATOR_END_DATE must be a YYYY-MM-DD date")
	assert.Contains(t, err.Error(), "GENERATOR_RERUN_POLICY must be skip or append")
}

func TestConfig_Validate(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := build(v)
	assert.NoError(t, cfg.validate(), "Default config should be valid")

	cfg.Generator.EndDate = cfg.Generator.StartDate
	cfg.WorkerPool.Size = 0
	cfg.Generator.RetryMaxAttempts = 0
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATOR_START_DATE must be before GENERATOR_END_DATE")
	assert.Contains(t, err.Error(), "WORKER_POOL_SIZE must be greater than 0")
	assert.Contains(t, err.Error(), "GENERATOR_RETRY_MAX_ATTEMPTS must be greater than 0")
}
