package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_feeds.yaml
var defaultFeedsFS embed.FS

// FeedSource is one entry of the ordered RSS fallback list
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type feedFile struct {
	Sources []FeedSource `yaml:"sources"`
}

// LoadFeedSources reads the ordered feed list from path, or the embedded defaults when path is empty
func LoadFeedSources(path string) ([]FeedSource, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = defaultFeedsFS.ReadFile("default_feeds.yaml")
		if err != nil {
			return nil, fmt.Errorf("reading embedded feeds: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading feeds file: %w", err)
		}
	}

	var f feedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing feeds file: %w", err)
	}
	if err := validateFeedSources(f.Sources); err != nil {
		return nil, err
	}
	return f.Sources, nil
}

func validateFeedSources(sources []FeedSource) error {
	for i, s := range sources {
		if s.Name == "" {
			return fmt.Errorf("feed source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("feed source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("feed source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
	}
	return nil
}
