package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// field binds a dotted key to a setting.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

var fields = map[string]field{
	"api_url":                   stringField(func(c *Config) *string { return &c.APIURL }),
	"locale":                    stringField(func(c *Config) *string { return &c.Locale }),
	"log_level":                 stringField(func(c *Config) *string { return &c.LogLevel }),
	"storage.backend":           stringField(func(c *Config) *string { return &c.Storage.Backend }),
	"storage.file_dir":          stringField(func(c *Config) *string { return &c.Storage.FileDir }),
	"broadcast.driver":          stringField(func(c *Config) *string { return &c.Broadcast.Driver }),
	"broadcast.redis_url":       stringField(func(c *Config) *string { return &c.Broadcast.RedisURL }),
	"broadcast.channel":         stringField(func(c *Config) *string { return &c.Broadcast.Channel }),
	"endpoints.login":           stringField(func(c *Config) *string { return &c.Endpoints.Login }),
	"endpoints.register":        stringField(func(c *Config) *string { return &c.Endpoints.Register }),
	"endpoints.forgot_password": stringField(func(c *Config) *string { return &c.Endpoints.ForgotPassword }),
	"endpoints.reset_password":  stringField(func(c *Config) *string { return &c.Endpoints.ResetPassword }),
	"endpoints.logout":          stringField(func(c *Config) *string { return &c.Endpoints.Logout }),
	"endpoints.me":              stringField(func(c *Config) *string { return &c.Endpoints.Me }),
	"endpoints.health":          stringField(func(c *Config) *string { return &c.Endpoints.Health }),
	"request_timeout": {
		get: func(c *Config) string { return c.RequestTimeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.RequestTimeout = Duration{d}
			return nil
		},
	},
	"guard.preserve_target": {
		get: func(c *Config) string { return strconv.FormatBool(c.Guard.PreserveTarget) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Guard.PreserveTarget = b
			return nil
		},
	},
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of key in its textual form.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(c), nil
}

// Set parses value into key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
