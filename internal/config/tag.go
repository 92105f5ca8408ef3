package config

// TagConfig holds download settings for a single gallery tag.
// Zero values mean "not set"; unset fields fall back to the file-level
// defaults and then to the built-in defaults.
type TagConfig struct {
	// Mode overrides the execution strategy ("sequential" or "threaded").
	Mode string `yaml:"mode,omitempty"`

	// Threads overrides the worker pool size for threaded downloads.
	Threads int `yaml:"threads,omitempty"`

	// OutputDir overrides the directory under which the run output root
	// is created.
	OutputDir string `yaml:"outputDir,omitempty"`

	// UserAgent overrides the User-Agent header for this tag.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy overrides the SOCKS5 proxy address in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// Exif enables EXIF inspection of downloaded images.
	Exif bool `yaml:"exif,omitempty"`

	// Types overrides the accepted image MIME types.
	Types []string `yaml:"types,omitempty"`
}

// File represents the structure of the .imgurgrab configuration file.
type File struct {
	// Tags maps gallery tag names to their tag-specific configurations.
	Tags map[string]TagConfig `yaml:"tags,omitempty"`

	// Defaults contains configuration applied to all tags unless
	// overridden in the tag-specific configuration.
	Defaults TagConfig `yaml:"defaults,omitempty"`
}

// GetTagConfig returns the configuration for a specific tag.
// It merges the tag-specific configuration with the file defaults.
func (cf *File) GetTagConfig(tag string) TagConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with tag-specific configuration if present
	if tagConfig, ok := cf.Tags[tag]; ok {
		if tagConfig.Mode != "" {
			result.Mode = tagConfig.Mode
		}
		if tagConfig.Threads != 0 {
			result.Threads = tagConfig.Threads
		}
		if tagConfig.OutputDir != "" {
			result.OutputDir = tagConfig.OutputDir
		}
		if tagConfig.UserAgent != "" {
			result.UserAgent = tagConfig.UserAgent
		}
		if tagConfig.Proxy != "" {
			result.Proxy = tagConfig.Proxy
		}
		if tagConfig.Exif {
			result.Exif = true
		}
		if len(tagConfig.Types) > 0 {
			result.Types = tagConfig.Types
		}
	}

	return result
}
