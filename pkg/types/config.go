package types

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultBaseURL is the ProsperWorks developer API root.
const DefaultBaseURL = "https://api.prosperworks.com/developer_api/v1/"

// DefaultTimeout bounds a single request when the config leaves it unset.
const DefaultTimeout = 30 * time.Second

// Config holds the parameters of one named connection.
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	AccessToken string        `json:"access_token" yaml:"access_token" mapstructure:"access_token"`
	UserEmail   string        `json:"user_email" yaml:"user_email" mapstructure:"user_email"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ErrConfigInvalid wraps every Validate failure.
var ErrConfigInvalid = errors.New("invalid connection config")

// WithDefaults returns a copy of c with an empty BaseURL and Timeout filled in.
func (c Config) WithDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate checks that the Config is usable. Failures wrap ErrConfigInvalid
// and name the offending fields.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.AccessToken, validation.Required),
		validation.Field(&c.UserEmail, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
