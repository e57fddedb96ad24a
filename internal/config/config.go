package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	InputDir   string
	OutputPath string
	DBPath     string
	ConfigFile string

	LogLevel   string
	DumpText   bool
	IncludeEML bool

	WatchIntervalSec int
	WatchAutoExport  bool
	WatchOutputDir   string

	// Columns is the ordered list of column keys to export; Labels maps a
	// key to its header text. Both may be overridden from the YAML file.
	Columns []string
	Labels  map[string]string
}

type fileConfig struct {
	InputDir   string            `yaml:"input_dir"`
	OutputPath string            `yaml:"output_path"`
	Columns    []string          `yaml:"columns"`
	Labels     map[string]string `yaml:"labels"`
}

var DefaultColumns = []string{
	"customer", "deliveryDate", "barCode", "material",
	"diameter", "length", "weight", "sourceFile",
}

var DefaultLabels = map[string]string{
	"customer":     "Customer",
	"deliveryDate": "Delivery Date",
	"barCode":      "Bar Code",
	"material":     "Material",
	"diameter":     "Diameter (mm)",
	"length":       "Length (mm)",
	"weight":       "Weight (kg)",
	"sourceFile":   "Source File",
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InputDir:   getEnv("INPUT_DIR", "orders"),
		OutputPath: getEnv("OUTPUT_PATH", "pedidos_extraidos.xlsx"),
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "pedidos.db")),
		ConfigFile: getEnv("CONFIG_FILE", "pedidos.yaml"),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DumpText:   getEnvBool("DUMP_TEXT", false),
		IncludeEML: getEnvBool("INCLUDE_EML", false),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", true),
		WatchOutputDir:   getEnv("WATCH_OUTPUT_DIR", filepath.Join(cwd, "out", "watch")),

		Columns: append([]string(nil), DefaultColumns...),
		Labels:  copyLabels(DefaultLabels),
	}

	if err := cfg.applyFile(cfg.ConfigFile); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile overlays the optional YAML file. A missing file is not an error.
func (c *Config) applyFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(blob, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.InputDir != "" {
		c.InputDir = fc.InputDir
	}
	if fc.OutputPath != "" {
		c.OutputPath = fc.OutputPath
	}
	if len(fc.Columns) > 0 {
		c.Columns = fc.Columns
	}
	for key, label := range fc.Labels {
		c.Labels[key] = label
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
	}
	return nil
}

func copyLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
