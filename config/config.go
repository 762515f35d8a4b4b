package config

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const baseCfgPath = "jobscout/config.toml"

// DefaultKeywords is the inclusion filter applied when neither the config
// file nor the KEYWORDS variable provides one.
var DefaultKeywords = []string{
	"devops",
	"cloud engineer",
	"site reliability",
	"sre",
	"platform engineer",
	"infrastructure",
}

type Config struct {
	Feeds        []string `toml:"feeds"`         // explicit feed URLs, used verbatim when non-empty
	FeedsFile    string   `toml:"feeds_file"`    // fallback newline-delimited feed list
	Keywords     []string `toml:"keywords"`      // inclusion keywords, stored lowercased
	Exclude      []string `toml:"exclude"`       // exclusion keywords, stored lowercased
	Hours        int      `toml:"hours"`         // lookback window
	Port         int      `toml:"port"`          // HTTP bind port
	FetchWorkers int      `toml:"fetch_workers"` // bound on parallel feed fetches
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	conf.Keywords = lower(conf.Keywords)
	conf.Exclude = lower(conf.Exclude)
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	return nil
}

func Default() Config {
	return Config{
		FeedsFile:    "feeds.example.txt",
		Keywords:     DefaultKeywords,
		Hours:        24,
		Port:         8000,
		FetchWorkers: 4,
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}

// ApplyEnv overlays environment variables on top of the file-based config.
// An unset or empty variable leaves the corresponding field untouched.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FEED_URLS"); v != "" {
		c.Feeds = SplitList(v)
	}
	if v := os.Getenv("FEEDS_FILE"); v != "" {
		c.FeedsFile = v
	}
	if v := os.Getenv("KEYWORDS"); v != "" {
		c.Keywords = SplitKeywords(v)
	}
	if v := os.Getenv("EXCLUDE_KEYWORDS"); v != "" {
		c.Exclude = SplitKeywords(v)
	}
	if v := os.Getenv("HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse HOURS value '%s' with %w", v, err)
		}
		c.Hours = hours
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse PORT value '%s' with %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("FETCH_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse FETCH_WORKERS value '%s' with %w", v, err)
		}
		c.FetchWorkers = workers
	}
	return nil
}

// ResolveFeeds returns the effective feed list: the explicit list when
// non-empty, otherwise the contents of the feeds file. A missing feeds file
// means "unconfigured" and yields an empty list, not an error. The list is
// not deduplicated; duplicate feeds are fetched independently and their
// duplicate entries removed later by the aggregation step.
func (c Config) ResolveFeeds() ([]string, error) {
	if len(c.Feeds) > 0 {
		return c.Feeds, nil
	}
	return ReadFeedsFile(c.FeedsFile)
}

// ReadFeedsFile reads a newline-delimited feed list, skipping blank lines
// and lines starting with '#'.
func ReadFeedsFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open feeds file at '%s' with %w", path, err)
	}
	defer f.Close()

	var feeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		feeds = append(feeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feeds file at '%s' with %w", path, err)
	}
	return feeds, nil
}

// SplitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SplitKeywords parses a comma-separated keyword list and lowercases every
// entry, the form keyword filters are matched in.
func SplitKeywords(value string) []string {
	return lower(SplitList(value))
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
