package config

import (
	"fmt"
	"time"
)

const (
	TimeParserDuckling   = "duckling"
	TimeParserDateparser = "dateparser"
)

func (c *Config) GetBotToken() string {
	return c.v.GetString("bot_token")
}

// GetOwnerID returns the bot owner: allowed to drive every pagination menu
// and the only user of /status and /log.
func (c *Config) GetOwnerID() string {
	return c.v.GetString("owner_id")
}

func (c *Config) GetIGDBClientID() string {
	return c.v.GetString("igdb_client_id")
}

func (c *Config) GetIGDBClientToken() string {
	return c.v.GetString("igdb_client_token")
}

func (c *Config) GetDatabasePath() string {
	return c.v.GetString("database_path")
}

func (c *Config) GetLogDir() string {
	return c.v.GetString("log_dir")
}

// GetDucklingURL returns the Duckling parse endpoint, or "" when no host is
// configured.
func (c *Config) GetDucklingURL() string {
	host := c.v.GetString("duckling_host")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("http://%s:%d/parse", host, c.v.GetInt("duckling_port"))
}

// GetTimeParser returns the natural language time backend name.
func (c *Config) GetTimeParser() string {
	if c.v.GetString("time_parser") == TimeParserDateparser {
		return TimeParserDateparser
	}
	return TimeParserDuckling
}

func (c *Config) GetRedditUserAgent() string {
	return c.v.GetString("reddit_user_agent")
}

func (c *Config) GetMangaDexBaseURL() string {
	return c.v.GetString("mangadex_base_url")
}

// GetPaginationTimeout returns how long a pagination menu stays interactive
// without input.
func (c *Config) GetPaginationTimeout() time.Duration {
	d := c.v.GetDuration("pagination_timeout")
	if d <= 0 {
		return 3 * time.Minute
	}
	return d
}

func (c *Config) GetPagePromptTimeout() time.Duration {
	d := c.v.GetDuration("page_prompt_timeout")
	if d <= 0 {
		return 2 * time.Minute
	}
	return d
}

func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
	if err := c.v.WriteConfig(); err != nil {
		c.Logger.Warnf("failed to write config for key %s: %v", key, err)
	}
}

// GetString returns the string value for a given config key
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}
