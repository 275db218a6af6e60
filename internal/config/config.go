package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the sleeve analyzer
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Imaging    ImagingConfig    `yaml:"imaging"`
	Barcode    BarcodeConfig    `yaml:"barcode"`
	OCR        OCRConfig        `yaml:"ocr"`
	Heuristics HeuristicsConfig `yaml:"heuristics"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Port           string        `yaml:"port"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ImagingConfig controls image decoding
type ImagingConfig struct {
	MaxDimension       int  `yaml:"max_dimension"`
	ApplyOrientation   bool `yaml:"apply_orientation"`
	DuplicateThreshold int  `yaml:"duplicate_threshold"`
}

// BarcodeConfig controls symbol decoding
type BarcodeConfig struct {
	TryHarder bool `yaml:"try_harder"`
}

// OCRConfig selects and tunes the text recognition engine
type OCRConfig struct {
	Engine      string  `yaml:"engine"`
	Language    string  `yaml:"language"`
	PageSegMode int     `yaml:"page_seg_mode"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// HeuristicsConfig holds the field guesser's empirical weights.
type HeuristicsConfig struct {
	MinLineLength     int      `yaml:"min_line_length"`
	MaxCandidateLines int      `yaml:"max_candidate_lines"`
	TopLines          int      `yaml:"top_lines"`
	MaxFieldLength    int      `yaml:"max_field_length"`
	UppercaseWeight   int      `yaml:"uppercase_weight"`
	LongLineLength    int      `yaml:"long_line_length"`
	LongLineBonus     int      `yaml:"long_line_bonus"`
	LetterBonus       int      `yaml:"letter_bonus"`
	Boilerplate       []string `yaml:"boilerplate"`
}

// Engines lists the OCR engines the service can be built with
var Engines = []string{"tesseract", "vision", "gemini", "openai", "ollama"}

// DefaultBoilerplate are regular expression fragments for packaging text
// that never names an artist or a title.
var DefaultBoilerplate = []string{
	"stereo",
	"mono",
	`side\s*[ab]`,
	"rpm",
	"vinyl",
	"limited",
	"edition",
	"copyright",
	"all rights",
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8090",
			MaxUploadBytes: 10 * 1024 * 1024,
			RequestTimeout: 60 * time.Second,
		},
		Imaging: ImagingConfig{
			MaxDimension:       2400,
			ApplyOrientation:   true,
			DuplicateThreshold: -1,
		},
		Barcode: BarcodeConfig{
			TryHarder: true,
		},
		OCR: OCRConfig{
			Engine:      "tesseract",
			Language:    "eng",
			PageSegMode: 6, // single uniform block of text
		},
		Heuristics: DefaultHeuristics(),
	}
}

// DefaultHeuristics returns the stock field guesser weights
func DefaultHeuristics() HeuristicsConfig {
	return HeuristicsConfig{
		MinLineLength:     3,
		MaxCandidateLines: 30,
		TopLines:          6,
		MaxFieldLength:    300,
		UppercaseWeight:   1,
		LongLineLength:    8,
		LongLineBonus:     5,
		LetterBonus:       2,
		Boilerplate:       append([]string(nil), DefaultBoilerplate...),
	}
}

// Load builds a Config from defaults, an optional YAML file and the environment.
// An empty path falls back to SLEEVESCAN_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SLEEVESCAN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.Server.MaxUploadBytes = n
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Server.RequestTimeout = d
	}
	if v := os.Getenv("OCR_ENGINE"); v != "" {
		c.OCR.Engine = v
	}
	if v := os.Getenv("OCR_LANGUAGE"); v != "" {
		c.OCR.Language = v
	}
	if v := os.Getenv("OCR_MODEL"); v != "" {
		c.OCR.Model = v
	}
	return nil
}

// Validate rejects configurations the analyzer cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, errors.New("server.request_timeout must not be negative"))
	}
	if c.Imaging.MaxDimension < 0 {
		errs = append(errs, errors.New("imaging.max_dimension must not be negative"))
	}

	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	known := false
	for _, e := range Engines {
		if e == c.OCR.Engine {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unsupported OCR engine %q (supported: %s)", c.OCR.Engine, strings.Join(Engines, ", ")))
	}

	h := c.Heuristics
	if h.MinLineLength < 0 || h.MaxCandidateLines <= 0 || h.TopLines <= 0 || h.MaxFieldLength <= 0 {
		errs = append(errs, errors.New("heuristics line limits must be positive"))
	}

	return errors.Join(errs...)
}
